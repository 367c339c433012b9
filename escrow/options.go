package escrow

import (
	"time"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/whitelist"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSink adds a sink receiving events after each commit.
func WithSink(s events.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
}

// WithTransferer sets the outbound transferer used by Withdraw.
func WithTransferer(t Transferer) Option {
	return func(e *Engine) { e.transfer = t }
}

// WithWhitelist replaces the engine's whitelist with g.
func WithWhitelist(g whitelist.Gate) Option {
	return func(e *Engine) {
		e.gate = g
		e.list, _ = g.(*whitelist.List)
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithoutRewards disables minting rewards on demand creation.
func WithoutRewards() Option {
	return func(e *Engine) { e.rewards = false }
}
