package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/dispatch"
	"github.com/agendahub/booking-backend/internal/domain"
)

// scriptedSender returns the queued errors in order, then nil forever.
type scriptedSender struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *scriptedSender) Send(context.Context, *domain.NotificationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *scriptedSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestBreakerSender_OpensAfterConsecutiveFailures(t *testing.T) {
	upstream := &scriptedSender{errs: []error{
		domain.ErrTransport, domain.ErrTransport, domain.ErrTransport,
	}}
	sender := dispatch.NewBreakerSender(upstream, 2, time.Minute, zap.NewNop(), nil)
	ctx := context.Background()
	msg := testMessage()

	for i := 0; i < 2; i++ {
		if err := sender.Send(ctx, msg); !errors.Is(err, domain.ErrTransport) {
			t.Fatalf("send %d: expected ErrTransport, got %v", i, err)
		}
	}

	// Third send must short-circuit without reaching the upstream.
	if err := sender.Send(ctx, msg); !errors.Is(err, domain.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if upstream.callCount() != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", upstream.callCount())
	}
}

func TestBreakerSender_HalfOpenProbeCloses(t *testing.T) {
	upstream := &scriptedSender{errs: []error{
		domain.ErrTransport, domain.ErrTransport,
	}}
	sender := dispatch.NewBreakerSender(upstream, 2, 20*time.Millisecond, zap.NewNop(), nil)
	ctx := context.Background()
	msg := testMessage()

	_ = sender.Send(ctx, msg)
	_ = sender.Send(ctx, msg)
	if err := sender.Send(ctx, msg); !errors.Is(err, domain.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	// Half-open probe succeeds and the circuit closes again.
	if err := sender.Send(ctx, msg); err != nil {
		t.Fatalf("probe: unexpected error: %v", err)
	}
	if err := sender.Send(ctx, msg); err != nil {
		t.Fatalf("after close: unexpected error: %v", err)
	}
}

func TestBreakerSender_FailedProbeReopens(t *testing.T) {
	upstream := &scriptedSender{errs: []error{
		domain.ErrTransport, domain.ErrTransport, domain.ErrTransport,
	}}
	sender := dispatch.NewBreakerSender(upstream, 2, 20*time.Millisecond, zap.NewNop(), nil)
	ctx := context.Background()
	msg := testMessage()

	_ = sender.Send(ctx, msg)
	_ = sender.Send(ctx, msg)

	time.Sleep(30 * time.Millisecond)

	// Probe fails, reopening immediately.
	if err := sender.Send(ctx, msg); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("probe: expected ErrTransport, got %v", err)
	}
	if err := sender.Send(ctx, msg); !errors.Is(err, domain.ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}

func TestBreakerSender_StateHook(t *testing.T) {
	var mu sync.Mutex
	var states []float64
	onState := func(state float64) {
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	}

	upstream := &scriptedSender{errs: []error{domain.ErrTransport, domain.ErrTransport}}
	sender := dispatch.NewBreakerSender(upstream, 2, 20*time.Millisecond, zap.NewNop(), onState)
	ctx := context.Background()
	msg := testMessage()

	_ = sender.Send(ctx, msg)
	_ = sender.Send(ctx, msg) // trips open (gauge 2)
	time.Sleep(30 * time.Millisecond)
	_ = sender.Send(ctx, msg) // half-open (1) then closed (0)

	mu.Lock()
	defer mu.Unlock()
	want := []float64{2, 1, 0}
	if len(states) != len(want) {
		t.Fatalf("expected states %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("expected states %v, got %v", want, states)
		}
	}
}
