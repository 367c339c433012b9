package ledger

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

// Asset names an independent balance book.
type Asset string

// AssetMargin is the settlement value unit deposited as margin.
const AssetMargin Asset = "margin"

const balanceSize = 8

// Ledger holds per-account balances of one asset. All postings run inside
// the caller's state.Tx, so they commit or roll back with it.
type Ledger struct {
	asset  Asset
	bucket []byte
}

// New returns the ledger for asset.
func New(asset Asset) *Ledger {
	return &Ledger{asset: asset, bucket: []byte("balances/" + string(asset))}
}

// Asset returns the ledger's asset.
func (l *Ledger) Asset() Asset { return l.asset }

// Balance returns the account's balance; unknown accounts hold zero.
func (l *Ledger) Balance(tx state.Tx, acct account.Account) (uint64, error) {
	data := tx.Get(l.bucket, acct[:])
	if data == nil {
		return 0, nil
	}
	if len(data) != balanceSize {
		return 0, fmt.Errorf("%w: %s/%s has %d bytes", ErrCorruptBalance, l.asset, acct, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// Credit adds amount to the account.
func (l *Ledger) Credit(tx state.Tx, acct account.Account, amount uint64) error {
	if err := checkPosting(acct, amount); err != nil {
		return err
	}
	bal, err := l.Balance(tx, acct)
	if err != nil {
		return err
	}
	if bal > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s balance %d + %d", ErrOverflow, acct, bal, amount)
	}
	return l.put(tx, acct, bal+amount)
}

// Debit removes amount from the account, failing if the balance is short.
func (l *Ledger) Debit(tx state.Tx, acct account.Account, amount uint64) error {
	if err := checkPosting(acct, amount); err != nil {
		return err
	}
	bal, err := l.Balance(tx, acct)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, acct, bal, amount)
	}
	return l.put(tx, acct, bal-amount)
}

// Transfer moves amount between two accounts.
func (l *Ledger) Transfer(tx state.Tx, from, to account.Account, amount uint64) error {
	if err := l.Debit(tx, from, amount); err != nil {
		return err
	}
	return l.Credit(tx, to, amount)
}

// Total sums every balance in the book.
func (l *Ledger) Total(tx state.Tx) (uint64, error) {
	var total uint64
	err := tx.ForEach(l.bucket, func(k, v []byte) error {
		if len(v) != balanceSize {
			return fmt.Errorf("%w: key %x", ErrCorruptBalance, k)
		}
		n := binary.BigEndian.Uint64(v)
		if total > math.MaxUint64-n {
			return ErrOverflow
		}
		total += n
		return nil
	})
	return total, err
}

func (l *Ledger) put(tx state.Tx, acct account.Account, bal uint64) error {
	if bal == 0 {
		return tx.Delete(l.bucket, acct[:])
	}
	buf := make([]byte, balanceSize)
	binary.BigEndian.PutUint64(buf, bal)
	return tx.Put(l.bucket, acct[:], buf)
}

func checkPosting(acct account.Account, amount uint64) error {
	if acct.IsZero() {
		return ErrZeroAccount
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	return nil
}
