package escrow

import (
	"context"

	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/state"
)

// Holdings is where the engine's value currently sits. Balances plus
// Margins plus Pools equals everything funded and not yet withdrawn.
type Holdings struct {
	Balances uint64
	Margins  uint64
	Pools    uint64
}

// Total returns the sum of all holdings.
func (h Holdings) Total() uint64 {
	return h.Balances + h.Margins + h.Pools
}

// Holdings reads every holding in one consistent view.
func (e *Engine) Holdings(ctx context.Context) (Holdings, error) {
	var h Holdings
	err := e.view(ctx, func(tx state.Tx) (err error) {
		if h.Balances, err = e.funds.Total(tx); err != nil {
			return err
		}
		if h.Margins, err = e.margins.Total(tx); err != nil {
			return err
		}
		h.Pools, err = e.pools.Total(tx)
		return err
	})
	return h, err
}

// Events returns the journal in commit order.
func (e *Engine) Events(ctx context.Context) ([]events.Event, error) {
	var out []events.Event
	err := e.view(ctx, func(tx state.Tx) (err error) {
		out, err = e.journal.List(tx)
		return err
	})
	return out, err
}
