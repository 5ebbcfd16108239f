package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/domain"
)

// BreakerSender wraps a Sender with a process-local circuit breaker.
// failMax consecutive failures open the circuit; while open, every send
// short-circuits with ErrCircuitOpen without touching the downstream.
// After resetTimeout a single half-open probe is allowed: success closes
// the circuit, failure reopens it.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

// BreakerStateHook is called on every state transition with the gauge
// value to record (0 closed, 1 half-open, 2 open).
type BreakerStateHook func(state float64)

func NewBreakerSender(
	next Sender,
	failMax int,
	resetTimeout time.Duration,
	logger *zap.Logger,
	onState BreakerStateHook,
) *BreakerSender {
	if onState == nil {
		onState = func(float64) {}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notification-sender",
		MaxRequests: 1, // one half-open probe
		Timeout:     resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failMax)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", stateLabel(from)),
				zap.String("to", stateLabel(to)),
			)
			onState(stateGauge(to))
		},
	})
	return &BreakerSender{next: next, cb: cb}
}

func (b *BreakerSender) Send(ctx context.Context, msg *domain.NotificationMessage) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrCircuitOpen, err)
	}
	return err
}

func stateLabel(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

var _ Sender = (*BreakerSender)(nil)
