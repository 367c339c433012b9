// Package margin holds the collateral both parties post against a demand.
// Deposits leave the depositor's ledger balance on entry and return to it
// only through WithdrawDeposit or Payout.
package margin

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/demand"
	"github.com/bitfsorg/libmargin-go/ledger"
	"github.com/bitfsorg/libmargin-go/state"
	"github.com/bitfsorg/libmargin-go/whitelist"
)

// BasisPoints is 100% expressed in basis points.
const BasisPoints = 10000

var bucket = []byte("margins")

// Margin is the pair of deposits held for one demand.
type Margin struct {
	DemandID        string
	Creator         account.Account
	Acceptor        account.Account
	CreatorDeposit  uint64
	AcceptorDeposit uint64
	Locked          bool
}

// Total returns the value currently held.
func (m *Margin) Total() uint64 {
	return m.CreatorDeposit + m.AcceptorDeposit
}

// Payout is the result of a settlement payout. Retained is the part of the
// deposits not returned to either party; the caller routes it onward.
type Payout struct {
	Creator  uint64
	Acceptor uint64
	Retained uint64
}

// Book owns every Margin record. Only accounts allowed by the gate may call Payout.
type Book struct {
	gate   whitelist.Gate
	funds  *ledger.Ledger
	minBps uint64
	maxBps uint64
}

// NewBook returns a margin book drawing deposits from funds. The acceptor
// deposit must lie within [minRatioBps, maxRatioBps] of the creator deposit.
func NewBook(gate whitelist.Gate, funds *ledger.Ledger, minRatioBps, maxRatioBps uint64) *Book {
	return &Book{gate: gate, funds: funds, minBps: minRatioBps, maxBps: maxRatioBps}
}

// AddDeposit moves amount from caller's balance into the margin for d.
func (b *Book) AddDeposit(tx state.Tx, d *demand.Demand, caller account.Account, amount uint64) (*Margin, error) {
	if !d.Accepted {
		return nil, ErrDemandNotAccepted
	}
	if d.Deleted {
		return nil, demand.ErrDeleted
	}
	if !d.IsParty(caller) {
		return nil, ErrUnauthorized
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	m, err := b.getOrNew(tx, d)
	if err != nil {
		return nil, err
	}

	switch caller {
	case d.Creator:
		if m.CreatorDeposit != 0 {
			return nil, ErrAlreadyAdded
		}
		if amount < d.RequiredDeposit {
			return nil, fmt.Errorf("%w: %d < %d", ErrBelowRequired, amount, d.RequiredDeposit)
		}
		m.CreatorDeposit = amount
	default:
		if m.AcceptorDeposit != 0 {
			return nil, ErrAlreadyAdded
		}
		if err := b.checkRatio(m.CreatorDeposit, amount); err != nil {
			return nil, err
		}
		m.AcceptorDeposit = amount
	}

	if err := b.funds.Debit(tx, caller, amount); err != nil {
		return nil, err
	}
	if err := b.put(tx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// WithdrawDeposit returns caller's deposit to their balance. The margin must be unlocked.
func (b *Book) WithdrawDeposit(tx state.Tx, d *demand.Demand, caller account.Account) (uint64, error) {
	if !d.IsParty(caller) {
		return 0, ErrUnauthorized
	}
	m, err := b.Get(tx, d.ID)
	if errors.Is(err, ErrNotFound) {
		return 0, ErrDepositNotAdded
	}
	if err != nil {
		return 0, err
	}

	side := &m.CreatorDeposit
	if caller != d.Creator {
		side = &m.AcceptorDeposit
	}
	if *side == 0 {
		return 0, ErrDepositNotAdded
	}
	if m.Locked {
		return 0, ErrLocked
	}

	amount := *side
	*side = 0
	if err := b.funds.Credit(tx, caller, amount); err != nil {
		return 0, err
	}
	if err := b.put(tx, m); err != nil {
		return 0, err
	}
	return amount, nil
}

// Lock freezes both deposits. Both sides must have deposited.
func (b *Book) Lock(tx state.Tx, d *demand.Demand, caller account.Account) (*Margin, error) {
	m, err := b.checkBoth(tx, d, caller)
	if err != nil {
		return nil, err
	}
	if m.Locked {
		return nil, ErrAlreadyLocked
	}
	m.Locked = true
	if err := b.put(tx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Unlock releases a locked margin.
func (b *Book) Unlock(tx state.Tx, d *demand.Demand, caller account.Account) (*Margin, error) {
	m, err := b.checkBoth(tx, d, caller)
	if err != nil {
		return nil, err
	}
	if !m.Locked {
		return nil, ErrNotLocked
	}
	m.Locked = false
	if err := b.put(tx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Payout empties a locked margin. creatorRetain and acceptorRetain are kept
// back from each deposit and returned as Retained; the rest of each deposit
// is credited to its owner. Both deposits are zeroed and the lock cleared.
func (b *Book) Payout(tx state.Tx, caller account.Account, demandID string, creatorRetain, acceptorRetain uint64) (Payout, error) {
	if err := whitelist.Require(b.gate, caller); err != nil {
		return Payout{}, err
	}
	m, err := b.Get(tx, demandID)
	if errors.Is(err, ErrNotFound) {
		return Payout{}, ErrNotLocked
	}
	if err != nil {
		return Payout{}, err
	}
	if !m.Locked {
		return Payout{}, ErrNotLocked
	}
	if creatorRetain > m.CreatorDeposit || acceptorRetain > m.AcceptorDeposit {
		return Payout{}, fmt.Errorf("%w: retain %d/%d of %d/%d", ErrInvalidShare,
			creatorRetain, acceptorRetain, m.CreatorDeposit, m.AcceptorDeposit)
	}

	p := Payout{
		Creator:  m.CreatorDeposit - creatorRetain,
		Acceptor: m.AcceptorDeposit - acceptorRetain,
		Retained: creatorRetain + acceptorRetain,
	}

	if p.Creator > 0 {
		if err := b.funds.Credit(tx, m.Creator, p.Creator); err != nil {
			return Payout{}, err
		}
	}
	if p.Acceptor > 0 {
		if err := b.funds.Credit(tx, m.Acceptor, p.Acceptor); err != nil {
			return Payout{}, err
		}
	}

	m.CreatorDeposit, m.AcceptorDeposit, m.Locked = 0, 0, false
	if err := b.put(tx, m); err != nil {
		return Payout{}, err
	}
	return p, nil
}

// Get returns the margin for demandID.
func (b *Book) Get(tx state.Tx, demandID string) (*Margin, error) {
	var m Margin
	if err := state.GetGob(tx, bucket, []byte(demandID), &m); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, demandID)
		}
		return nil, err
	}
	return &m, nil
}

// Total sums the deposits held across all margins.
func (b *Book) Total(tx state.Tx) (uint64, error) {
	var total uint64
	err := tx.ForEach(bucket, func(k, _ []byte) error {
		m, err := b.Get(tx, string(k))
		if err != nil {
			return err
		}
		total += m.Total()
		return nil
	})
	return total, err
}

func (b *Book) checkBoth(tx state.Tx, d *demand.Demand, caller account.Account) (*Margin, error) {
	if !d.IsParty(caller) {
		return nil, ErrUnauthorized
	}
	m, err := b.Get(tx, d.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrDepositNotAdded
	}
	if err != nil {
		return nil, err
	}
	if m.CreatorDeposit == 0 {
		return nil, ErrDepositNotAdded
	}
	if m.AcceptorDeposit == 0 {
		return nil, ErrAcceptorDepositMissing
	}
	return m, nil
}

// checkRatio enforces minBps*creator <= acceptor*10000 <= maxBps*creator.
func (b *Book) checkRatio(creator, acceptor uint64) error {
	if creator == 0 {
		return fmt.Errorf("%w: creator has not deposited", ErrInvalidDepositRatio)
	}
	a := dec(acceptor).Mul(dec(BasisPoints))
	lo := dec(creator).Mul(dec(b.minBps))
	hi := dec(creator).Mul(dec(b.maxBps))
	if a.LessThan(lo) || a.GreaterThan(hi) {
		return fmt.Errorf("%w: %d against creator %d", ErrInvalidDepositRatio, acceptor, creator)
	}
	return nil
}

func (b *Book) getOrNew(tx state.Tx, d *demand.Demand) (*Margin, error) {
	m, err := b.Get(tx, d.ID)
	if errors.Is(err, ErrNotFound) {
		return &Margin{DemandID: d.ID, Creator: d.Creator, Acceptor: d.Acceptor}, nil
	}
	return m, err
}

func (b *Book) put(tx state.Tx, m *Margin) error {
	return state.PutGob(tx, bucket, []byte(m.DemandID), m)
}

// SplitFee charges feeBps of the combined deposits, rounded down, and
// apportions it by deposit size. The creator's part is rounded down and the
// acceptor's part takes the remainder, so the two always sum to the fee and
// neither exceeds its deposit.
func SplitFee(creatorDeposit, acceptorDeposit, feeBps uint64) (creatorFee, acceptorFee uint64) {
	total := dec(creatorDeposit).Add(dec(acceptorDeposit))
	if total.IsZero() || feeBps == 0 {
		return 0, 0
	}
	if feeBps > BasisPoints {
		feeBps = BasisPoints
	}
	fee, _ := total.Mul(dec(feeBps)).QuoRem(dec(BasisPoints), 0)
	cf, _ := fee.Mul(dec(creatorDeposit)).QuoRem(total, 0)
	return cf.BigInt().Uint64(), fee.Sub(cf).BigInt().Uint64()
}

func dec(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}
