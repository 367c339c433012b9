package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
)

// Transferer moves value out of the engine to an external account.
type Transferer interface {
	Transfer(ctx context.Context, to account.Account, amount uint64) error
}

// MockTransferer is a test double for Transferer.
// TransferFn must be set before Transfer is called.
type MockTransferer struct {
	TransferFn func(ctx context.Context, to account.Account, amount uint64) error
}

func (m *MockTransferer) Transfer(ctx context.Context, to account.Account, amount uint64) error {
	return m.TransferFn(ctx, to, amount)
}

// BreakerTransferer stops calling a failing Transferer until it has had
// time to recover. While open, Transfer fails with ErrTransferUnavailable.
type BreakerTransferer struct {
	next Transferer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerTransferer wraps next. The breaker opens after maxFailures
// consecutive failures and lets one trial call through after timeout.
func NewBreakerTransferer(next Transferer, maxFailures uint32, timeout time.Duration, log *zap.Logger) *BreakerTransferer {
	if maxFailures == 0 {
		maxFailures = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "transfer",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerTransferer{next: next, cb: cb}
}

// Transfer implements Transferer.
func (b *BreakerTransferer) Transfer(ctx context.Context, to account.Account, amount uint64) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Transfer(ctx, to, amount)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrTransferUnavailable, err)
	}
	return err
}

// State reports the breaker state: "closed", "half-open" or "open".
func (b *BreakerTransferer) State() string {
	return b.cb.State().String()
}
