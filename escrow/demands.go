package escrow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/demand"
	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/reward"
	"github.com/bitfsorg/libmargin-go/state"
)

// CreateDemand posts a demand by caller requiring requiredDeposit from the
// creator. An empty id allocates a sequential one. The creator receives the
// current reward unless rewards are disabled or exhausted.
func (e *Engine) CreateDemand(ctx context.Context, id string, caller account.Account, requiredDeposit uint64) (*demand.Demand, error) {
	var d *demand.Demand
	fields := append(opFields(id, caller), zap.Uint64("required_deposit", requiredDeposit))
	err := e.update(ctx, "create demand", fields, func(u *unit) (err error) {
		if d, err = e.demands.Create(u.tx, id, caller, requiredDeposit); err != nil {
			return err
		}
		if err := u.emit(events.Event{Kind: events.DemandCreated, DemandID: d.ID, Account: caller, Amount: requiredDeposit}); err != nil {
			return err
		}
		if !e.rewards {
			return nil
		}
		minted, err := e.issuer.IssueReward(u.tx, e.self, caller)
		if errors.Is(err, reward.ErrExhausted) {
			return nil
		}
		if err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.RewardIssued, DemandID: d.ID, Account: caller, Amount: minted})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// AcceptDemand records caller as the counterpart of demand id.
func (e *Engine) AcceptDemand(ctx context.Context, id string, caller account.Account) (*demand.Demand, error) {
	var d *demand.Demand
	err := e.update(ctx, "accept demand", opFields(id, caller), func(u *unit) (err error) {
		if d, err = e.demands.Accept(u.tx, id, caller); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.DemandAccepted, DemandID: id, Account: caller})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDemand marks demand id deleted. Only its creator may delete it, and
// only before acceptance unless the engine allows deleting accepted demands.
// Deposits already made stay withdrawable.
func (e *Engine) DeleteDemand(ctx context.Context, id string, caller account.Account) error {
	return e.update(ctx, "delete demand", opFields(id, caller), func(u *unit) error {
		if open, err := e.machine.IsOpen(u.tx, id); err != nil {
			return err
		} else if open {
			return errTransactionOpen(id)
		}
		if _, err := e.demands.Delete(u.tx, id, caller); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.DemandDeleted, DemandID: id, Account: caller})
	})
}

// Demand returns demand id.
func (e *Engine) Demand(ctx context.Context, id string) (*demand.Demand, error) {
	var d *demand.Demand
	err := e.view(ctx, func(tx state.Tx) (err error) {
		d, err = e.demands.Get(tx, id)
		return err
	})
	return d, err
}

// Demands returns every demand in id order.
func (e *Engine) Demands(ctx context.Context) ([]*demand.Demand, error) {
	var out []*demand.Demand
	err := e.view(ctx, func(tx state.Tx) error {
		return e.demands.ForEach(tx, func(d *demand.Demand) error {
			out = append(out, d)
			return nil
		})
	})
	return out, err
}
