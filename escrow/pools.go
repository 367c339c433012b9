package escrow

import (
	"context"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/revshare"
	"github.com/bitfsorg/libmargin-go/state"
)

// WithdrawPlatform pays the platform balance of pool to the configured
// platform account. The caller must be that account or whitelisted.
func (e *Engine) WithdrawPlatform(ctx context.Context, caller account.Account, pool revshare.Kind) (uint64, error) {
	var amount uint64
	fields := append(opFields("", caller), zap.Stringer("pool", pool))
	err := e.update(ctx, "withdraw platform", fields, func(u *unit) (err error) {
		if amount, err = e.pools.WithdrawPlatform(u.tx, caller, pool); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.PoolWithdrawn, Account: e.platform, Amount: amount, Pool: pool.String()})
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// WithdrawUserShare pays amount from pool's user side to caller, a shareholder.
func (e *Engine) WithdrawUserShare(ctx context.Context, caller account.Account, pool revshare.Kind, amount uint64) error {
	fields := append(opFields("", caller), zap.Stringer("pool", pool), zap.Uint64("amount", amount))
	return e.update(ctx, "withdraw user share", fields, func(u *unit) error {
		if err := e.pools.WithdrawUserShare(u.tx, caller, pool, amount); err != nil {
			return err
		}
		return u.emit(events.Event{Kind: events.PoolWithdrawn, Account: caller, Amount: amount, Pool: pool.String()})
	})
}

// Pool returns the state of pool.
func (e *Engine) Pool(ctx context.Context, pool revshare.Kind) (*revshare.Pool, error) {
	var p *revshare.Pool
	err := e.view(ctx, func(tx state.Tx) (err error) {
		p, err = e.pools.Get(tx, pool)
		return err
	})
	return p, err
}

// ShareOf returns acct's share count in pool.
func (e *Engine) ShareOf(ctx context.Context, pool revshare.Kind, acct account.Account) (uint64, error) {
	var n uint64
	err := e.view(ctx, func(tx state.Tx) (err error) {
		n, err = e.pools.ShareOf(tx, pool, acct)
		return err
	})
	return n, err
}

// Entitlement returns what acct could withdraw from pool under proportional accounting.
func (e *Engine) Entitlement(ctx context.Context, pool revshare.Kind, acct account.Account) (uint64, error) {
	var n uint64
	err := e.view(ctx, func(tx state.Tx) (err error) {
		n, err = e.pools.Entitlement(tx, pool, acct)
		return err
	})
	return n, err
}
