package escrow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/demand"
	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/margin"
	"github.com/bitfsorg/libmargin-go/settlement"
	"github.com/bitfsorg/libmargin-go/state"
)

// AddDeposit moves amount from caller's balance into the margin of demand id.
func (e *Engine) AddDeposit(ctx context.Context, id string, caller account.Account, amount uint64) (*margin.Margin, error) {
	var m *margin.Margin
	fields := append(opFields(id, caller), zap.Uint64("amount", amount))
	err := e.update(ctx, "add deposit", fields, func(u *unit) error {
		d, err := e.demands.Get(u.tx, id)
		if err != nil {
			return err
		}
		if m, err = e.margins.AddDeposit(u.tx, d, caller, amount); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.DepositRecorded, DemandID: id, Account: caller, Amount: amount})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// WithdrawDeposit returns caller's unlocked deposit to their balance.
func (e *Engine) WithdrawDeposit(ctx context.Context, id string, caller account.Account) (uint64, error) {
	var amount uint64
	err := e.update(ctx, "withdraw deposit", opFields(id, caller), func(u *unit) error {
		d, err := e.demands.Get(u.tx, id)
		if err != nil {
			return err
		}
		if amount, err = e.margins.WithdrawDeposit(u.tx, d, caller); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.DepositWithdrawn, DemandID: id, Account: caller, Amount: amount})
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// LockDeposit locks the margin of demand id once both sides have deposited.
func (e *Engine) LockDeposit(ctx context.Context, id string, caller account.Account) error {
	return e.update(ctx, "lock deposit", opFields(id, caller), func(u *unit) error {
		d, err := e.demands.Get(u.tx, id)
		if err != nil {
			return err
		}
		if d.Deleted {
			return demand.ErrDeleted
		}
		if _, err := e.margins.Lock(u.tx, d, caller); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.MarginLocked, DemandID: id, Account: caller})
	})
}

// UnlockDeposit unlocks the margin of demand id. It is refused while a
// transaction on the demand is open, since settlement pays out of the lock.
func (e *Engine) UnlockDeposit(ctx context.Context, id string, caller account.Account) error {
	return e.update(ctx, "unlock deposit", opFields(id, caller), func(u *unit) error {
		d, err := e.demands.Get(u.tx, id)
		if err != nil {
			return err
		}
		if open, err := e.machine.IsOpen(u.tx, id); err != nil {
			return err
		} else if open {
			return errTransactionOpen(id)
		}
		if _, err := e.margins.Unlock(u.tx, d, caller); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.MarginUnlocked, DemandID: id, Account: caller})
	})
}

// Margin returns the margin of demand id.
func (e *Engine) Margin(ctx context.Context, id string) (*margin.Margin, error) {
	var m *margin.Margin
	err := e.view(ctx, func(tx state.Tx) (err error) {
		m, err = e.margins.Get(tx, id)
		return err
	})
	return m, err
}

func errTransactionOpen(id string) error {
	return fmt.Errorf("%w: demand %q", settlement.ErrTransactionOpen, id)
}
