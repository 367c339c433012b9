// Package reward mints the incentive token paid to demand creators and
// shrinks the per-demand reward on a fixed emission schedule.
package reward

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/ledger"
	"github.com/bitfsorg/libmargin-go/state"
	"github.com/bitfsorg/libmargin-go/whitelist"
)

// Asset is the ledger asset carrying minted rewards.
const Asset ledger.Asset = "reward"

// ErrExhausted indicates the emission schedule reached zero; IssueReward
// mints nothing once it does.
var ErrExhausted = errors.New("reward: emission exhausted")

var (
	bucket    = []byte("reward")
	amountKey = []byte("amount")
)

// Issuer mints rewards on its own ledger. The current amount lives in the
// store so it survives restarts and rolls back with the unit of work.
type Issuer struct {
	gate      whitelist.Gate
	book      *ledger.Ledger
	initial   uint64
	decrement uint64
}

// NewIssuer returns an issuer starting at initial and shrinking by decrement
// on each ReduceEmission.
func NewIssuer(gate whitelist.Gate, initial, decrement uint64) *Issuer {
	return &Issuer{gate: gate, book: ledger.New(Asset), initial: initial, decrement: decrement}
}

// Amount returns the reward the next IssueReward would mint.
func (is *Issuer) Amount(tx state.Tx) (uint64, error) {
	data := tx.Get(bucket, amountKey)
	if data == nil {
		return is.initial, nil
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("reward: corrupt amount (%d bytes)", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// IssueReward mints the current reward to acct and returns the minted amount.
// A zero schedule mints nothing and returns ErrExhausted.
func (is *Issuer) IssueReward(tx state.Tx, caller, acct account.Account) (uint64, error) {
	if err := whitelist.Require(is.gate, caller); err != nil {
		return 0, err
	}
	amt, err := is.Amount(tx)
	if err != nil {
		return 0, err
	}
	if amt == 0 {
		return 0, ErrExhausted
	}
	if err := is.book.Credit(tx, acct, amt); err != nil {
		return 0, fmt.Errorf("reward: mint: %w", err)
	}
	return amt, nil
}

// ReduceEmission lowers the reward by the decrement, flooring at zero, and
// returns the new amount.
func (is *Issuer) ReduceEmission(tx state.Tx, caller account.Account) (uint64, error) {
	if err := whitelist.Require(is.gate, caller); err != nil {
		return 0, err
	}
	amt, err := is.Amount(tx)
	if err != nil {
		return 0, err
	}
	if amt > is.decrement {
		amt -= is.decrement
	} else {
		amt = 0
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, amt)
	if err := tx.Put(bucket, amountKey, buf); err != nil {
		return 0, err
	}
	return amt, nil
}

// Balance returns the reward tokens held by acct.
func (is *Issuer) Balance(tx state.Tx, acct account.Account) (uint64, error) {
	return is.book.Balance(tx, acct)
}
