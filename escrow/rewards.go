package escrow

import (
	"context"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

// ReduceEmission lowers the per-demand reward by the configured decrement
// and returns the new amount. The caller must be the admin or whitelisted.
func (e *Engine) ReduceEmission(ctx context.Context, caller account.Account) (uint64, error) {
	var amount uint64
	err := e.update(ctx, "reduce emission", opFields("", caller), func(u *unit) (err error) {
		amount, err = e.issuer.ReduceEmission(u.tx, caller)
		return err
	})
	if err != nil {
		return 0, err
	}
	e.log.Debug("reward amount", zap.Uint64("amount", amount))
	return amount, nil
}

// RewardAmount returns the reward the next demand creator would receive.
func (e *Engine) RewardAmount(ctx context.Context) (uint64, error) {
	var n uint64
	err := e.view(ctx, func(tx state.Tx) (err error) {
		n, err = e.issuer.Amount(tx)
		return err
	})
	return n, err
}

// RewardBalance returns the reward tokens held by acct.
func (e *Engine) RewardBalance(ctx context.Context, acct account.Account) (uint64, error) {
	var n uint64
	err := e.view(ctx, func(tx state.Tx) (err error) {
		n, err = e.issuer.Balance(tx, acct)
		return err
	})
	return n, err
}
