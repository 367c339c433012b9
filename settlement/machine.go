// Package settlement drives a transaction from Open to Fulfilled, Cancelled
// or Destroyed and settles the locked margin through the margin book and
// the distribution pools.
package settlement

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/demand"
	"github.com/bitfsorg/libmargin-go/margin"
	"github.com/bitfsorg/libmargin-go/revshare"
	"github.com/bitfsorg/libmargin-go/state"
)

var bucket = []byte("transactions")

// Machine owns every Transaction record. It calls the margin book and the
// pools as self, which must be allowed by their gate.
type Machine struct {
	self    account.Account
	margins *margin.Book
	pools   *revshare.Pools
	feeBps  uint64
}

// NewMachine returns a state machine charging feeBps of the combined locked
// deposits on fulfillment.
func NewMachine(self account.Account, margins *margin.Book, pools *revshare.Pools, feeBps uint64) (*Machine, error) {
	if feeBps > margin.BasisPoints {
		return nil, fmt.Errorf("settlement: fee %d bps above 100%%", feeBps)
	}
	return &Machine{self: self, margins: margins, pools: pools, feeBps: feeBps}, nil
}

// Create opens the transaction for d. The margin must be locked.
func (m *Machine) Create(tx state.Tx, d *demand.Demand, caller account.Account) (*Transaction, error) {
	if !d.IsParty(caller) {
		return nil, ErrUnauthorized
	}
	if tx.Get(bucket, []byte(d.ID)) != nil {
		return nil, ErrAlreadyExists
	}
	mg, err := m.margins.Get(tx, d.ID)
	if errors.Is(err, margin.ErrNotFound) {
		return nil, ErrMarginNotLocked
	}
	if err != nil {
		return nil, err
	}
	if !mg.Locked {
		return nil, ErrMarginNotLocked
	}

	t := &Transaction{
		DemandID:            d.ID,
		Creator:             mg.Creator,
		Acceptor:            mg.Acceptor,
		CreatorLockDeposit:  mg.CreatorDeposit,
		AcceptorLockDeposit: mg.AcceptorDeposit,
		Status:              StatusOpen,
	}
	if err := m.put(tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Fulfill records caller's confirmation. The second confirmation settles:
// the fee is kept from the margin and sent to the Profit Pool, the rest is
// refunded, and both parties gain a profit share. The returned Outcome is
// nil until the transaction settles.
func (m *Machine) Fulfill(tx state.Tx, demandID string, caller account.Account) (*Transaction, *Outcome, error) {
	t, err := m.open(tx, demandID, caller)
	if err != nil {
		return nil, nil, err
	}

	flag := &t.CreatorFulfilled
	if caller != t.Creator {
		flag = &t.AcceptorFulfilled
	}
	if *flag {
		return nil, nil, ErrAlreadyConfirmed
	}
	*flag = true

	var out *Outcome
	if t.CreatorFulfilled && t.AcceptorFulfilled {
		fee := func(c, a uint64) (uint64, uint64) { return margin.SplitFee(c, a, m.feeBps) }
		if out, err = m.settle(tx, t, fee, revshare.KindProfit); err != nil {
			return nil, nil, err
		}
		t.Status = StatusFulfilled
		out.Status = t.Status
	}
	if err := m.put(tx, t); err != nil {
		return nil, nil, err
	}
	return t, out, nil
}

// Cancel records caller's cancellation. The second cancellation refunds
// both deposits in full; nothing reaches a pool.
func (m *Machine) Cancel(tx state.Tx, demandID string, caller account.Account) (*Transaction, *Outcome, error) {
	t, err := m.open(tx, demandID, caller)
	if err != nil {
		return nil, nil, err
	}

	flag := &t.CreatorCancelled
	if caller != t.Creator {
		flag = &t.AcceptorCancelled
	}
	if *flag {
		return nil, nil, ErrAlreadyConfirmed
	}
	*flag = true

	var out *Outcome
	if t.CreatorCancelled && t.AcceptorCancelled {
		if out, err = m.settle(tx, t, retainNone, 0); err != nil {
			return nil, nil, err
		}
		t.Status = StatusCancelled
		out.Status = t.Status
	}
	if err := m.put(tx, t); err != nil {
		return nil, nil, err
	}
	return t, out, nil
}

// Destroy settles immediately on a single party's call: the whole margin
// goes to the Destroy Fund Pool and both parties gain a destroy share.
func (m *Machine) Destroy(tx state.Tx, demandID string, caller account.Account) (*Transaction, *Outcome, error) {
	t, err := m.open(tx, demandID, caller)
	if err != nil {
		return nil, nil, err
	}

	out, err := m.settle(tx, t, retainAll, revshare.KindDestroy)
	if err != nil {
		return nil, nil, err
	}
	t.Destroyed = true
	t.Status = StatusDestroyed
	out.Status = t.Status
	if err := m.put(tx, t); err != nil {
		return nil, nil, err
	}
	return t, out, nil
}

// Get returns the transaction for demandID.
func (m *Machine) Get(tx state.Tx, demandID string) (*Transaction, error) {
	var t Transaction
	if err := state.GetGob(tx, bucket, []byte(demandID), &t); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, demandID)
		}
		return nil, err
	}
	return &t, nil
}

// IsOpen reports whether an Open transaction exists for demandID.
func (m *Machine) IsOpen(tx state.Tx, demandID string) (bool, error) {
	t, err := m.Get(tx, demandID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return t.Status == StatusOpen, nil
}

// open loads an Open transaction on which caller is a party.
func (m *Machine) open(tx state.Tx, demandID string, caller account.Account) (*Transaction, error) {
	t, err := m.Get(tx, demandID)
	if err != nil {
		return nil, err
	}
	if !t.IsParty(caller) {
		return nil, ErrUnauthorized
	}
	if t.Status != StatusOpen {
		return nil, fmt.Errorf("%w: %s", ErrTransactionClosed, t.Status)
	}
	return t, nil
}

// retainFunc decides how much of each locked deposit is kept back from its owner.
type retainFunc func(creatorDeposit, acceptorDeposit uint64) (creatorRetain, acceptorRetain uint64)

func retainNone(uint64, uint64) (uint64, uint64) { return 0, 0 }

func retainAll(c, a uint64) (uint64, uint64) { return c, a }

// settle refunds each deposit less what retain keeps back and routes the
// retained value to pool. A zero pool means nothing is routed; otherwise
// both parties gain a share of pool.
func (m *Machine) settle(tx state.Tx, t *Transaction, retain retainFunc, pool revshare.Kind) (*Outcome, error) {
	mg, err := m.margins.Get(tx, t.DemandID)
	if errors.Is(err, margin.ErrNotFound) {
		return nil, ErrMarginNotLocked
	}
	if err != nil {
		return nil, err
	}
	creatorRetain, acceptorRetain := retain(mg.CreatorDeposit, mg.AcceptorDeposit)
	p, err := m.margins.Payout(tx, m.self, t.DemandID, creatorRetain, acceptorRetain)
	if errors.Is(err, margin.ErrNotLocked) {
		return nil, ErrMarginNotLocked
	}
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		DemandID:       t.DemandID,
		CreatorRefund:  p.Creator,
		AcceptorRefund: p.Acceptor,
	}
	if pool == 0 {
		return out, nil
	}

	if p.Retained > 0 {
		if out.PlatformCut, out.UserCut, err = m.pools.AssignIncoming(tx, m.self, pool, p.Retained); err != nil {
			return nil, err
		}
	}
	if pool == revshare.KindDestroy {
		out.Forfeit = p.Retained
	} else {
		out.Fee = p.Retained
	}

	for _, party := range []account.Account{t.Creator, t.Acceptor} {
		if _, err := m.pools.AddShare(tx, m.self, pool, party); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *Machine) put(tx state.Tx, t *Transaction) error {
	return state.PutGob(tx, bucket, []byte(t.DemandID), t)
}
