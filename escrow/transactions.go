package escrow

import (
	"context"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/demand"
	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/revshare"
	"github.com/bitfsorg/libmargin-go/settlement"
	"github.com/bitfsorg/libmargin-go/state"
)

// CreateTransaction opens the transaction for demand id. Its margin must be locked.
func (e *Engine) CreateTransaction(ctx context.Context, id string, caller account.Account) (*settlement.Transaction, error) {
	var t *settlement.Transaction
	err := e.update(ctx, "create transaction", opFields(id, caller), func(u *unit) error {
		d, err := e.demands.Get(u.tx, id)
		if err != nil {
			return err
		}
		if d.Deleted {
			return demand.ErrDeleted
		}
		if t, err = e.machine.Create(u.tx, d, caller); err != nil {
			return err
		}
		return u.emit(events.Event{
			Kind:     events.TransactionCreated,
			DemandID: id,
			Account:  caller,
			Amount:   t.CreatorLockDeposit + t.AcceptorLockDeposit,
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// confirmFn is one of the state machine's confirmation calls.
type confirmFn func(tx state.Tx, id string, caller account.Account) (*settlement.Transaction, *settlement.Outcome, error)

// FulfillTransaction confirms fulfillment by caller. The second party's
// confirmation settles the transaction; the returned Outcome is nil before that.
func (e *Engine) FulfillTransaction(ctx context.Context, id string, caller account.Account) (*settlement.Transaction, *settlement.Outcome, error) {
	return e.transition(ctx, "fulfill transaction", id, caller, e.machine.Fulfill, events.TransactionFulfilled, revshare.KindProfit)
}

// CancelTransaction confirms cancellation by caller. The second party's
// cancellation refunds both deposits in full.
func (e *Engine) CancelTransaction(ctx context.Context, id string, caller account.Account) (*settlement.Transaction, *settlement.Outcome, error) {
	return e.transition(ctx, "cancel transaction", id, caller, e.machine.Cancel, events.TransactionCancelled, 0)
}

// DestroyTransaction forfeits the whole margin to the Destroy Fund Pool on a
// single party's call.
func (e *Engine) DestroyTransaction(ctx context.Context, id string, caller account.Account) (*settlement.Transaction, *settlement.Outcome, error) {
	return e.transition(ctx, "destroy transaction", id, caller, e.machine.Destroy, events.TransactionDestroyed, revshare.KindDestroy)
}

func (e *Engine) transition(ctx context.Context, op, id string, caller account.Account, step confirmFn, done events.Kind, pool revshare.Kind) (*settlement.Transaction, *settlement.Outcome, error) {
	var (
		t   *settlement.Transaction
		out *settlement.Outcome
	)
	err := e.update(ctx, op, opFields(id, caller), func(u *unit) (err error) {
		if t, out, err = step(u.tx, id, caller); err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		return e.emitOutcome(u, t, out, done, pool)
	})
	if err != nil {
		return nil, nil, err
	}
	if out != nil {
		e.log.Debug(op+" settled",
			zap.String("demand_id", id),
			zap.Stringer("status", out.Status),
			zap.Uint64("creator_refund", out.CreatorRefund),
			zap.Uint64("acceptor_refund", out.AcceptorRefund),
			zap.Uint64("fee", out.Fee),
			zap.Uint64("forfeit", out.Forfeit),
		)
	}
	return t, out, nil
}

func (e *Engine) emitOutcome(u *unit, t *settlement.Transaction, out *settlement.Outcome, done events.Kind, pool revshare.Kind) error {
	evs := []events.Event{{Kind: done, DemandID: t.DemandID, Amount: out.CreatorRefund + out.AcceptorRefund}}
	if pool != 0 {
		if routed := out.Routed(); routed > 0 {
			evs = append(evs, events.Event{Kind: events.PoolAssigned, DemandID: t.DemandID, Amount: routed, Pool: pool.String()})
		}
		for _, party := range []account.Account{t.Creator, t.Acceptor} {
			evs = append(evs, events.Event{Kind: events.ShareAdded, DemandID: t.DemandID, Account: party, Amount: 1, Pool: pool.String()})
		}
	}
	for _, ev := range evs {
		if err := u.emit(ev); err != nil {
			return err
		}
	}
	return nil
}

// Transaction returns the transaction of demand id.
func (e *Engine) Transaction(ctx context.Context, id string) (*settlement.Transaction, error) {
	var t *settlement.Transaction
	err := e.view(ctx, func(tx state.Tx) (err error) {
		t, err = e.machine.Get(tx, id)
		return err
	})
	return t, err
}
