package escrow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/state"
)

// Fund credits acct with value that arrived from outside the engine.
func (e *Engine) Fund(ctx context.Context, acct account.Account, amount uint64) error {
	fields := append(opFields("", acct), zap.Uint64("amount", amount))
	return e.update(ctx, "fund", fields, func(u *unit) error {
		if err := e.funds.Credit(u.tx, acct, amount); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.FundsDeposited, Account: acct, Amount: amount})
	})
}

// Withdraw debits caller and sends amount out through the transferer. The
// transfer runs last inside the unit of work; if it fails the debit is
// rolled back and ErrTransferFailed is returned.
func (e *Engine) Withdraw(ctx context.Context, caller account.Account, amount uint64) error {
	if e.transfer == nil {
		return ErrNoTransferer
	}
	fields := append(opFields("", caller), zap.Uint64("amount", amount))
	return e.update(ctx, "withdraw", fields, func(u *unit) error {
		if err := e.funds.Debit(u.tx, caller, amount); err != nil {
			return err
		}
		if err := u.emit(events.Event{Kind: events.FundsWithdrawn, Account: caller, Amount: amount}); err != nil {
			return err
		}
		if err := e.transfer.Transfer(ctx, caller, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		return nil
	})
}

// Balance returns acct's spendable balance.
func (e *Engine) Balance(ctx context.Context, acct account.Account) (uint64, error) {
	var bal uint64
	err := e.view(ctx, func(tx state.Tx) (err error) {
		bal, err = e.funds.Balance(tx, acct)
		return err
	})
	return bal, err
}
