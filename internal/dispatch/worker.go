package dispatch

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/repository"
)

// Config bounds one dispatch invocation: at most RetryMaxAttempts sends,
// separated by exponential backoff between BackoffBase and BackoffMax.
// CircuitResetDelay is how long a circuit-aborted message waits before
// resubmission; CoarseRetryDelay covers unexpected errors.
type Config struct {
	RetryMaxAttempts  int
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	CircuitResetDelay time.Duration
	CoarseRetryDelay  time.Duration
}

// Hooks carries the metric callback functions injected by main. Using a
// struct keeps the worker constructor signature clean.
type Hooks struct {
	OnSent     func(latency time.Duration)
	OnFailed   func()
	OnRequeued func()
}

// A message that vanished from the store is re-read a few times before it
// is dropped; this covers the gap between a relay commit and read
// visibility when the submission delay was not enough.
const (
	lookupRetries = 3
	lookupDelay   = 250 * time.Millisecond
)

// Worker is a single goroutine that pulls message ids from the queue,
// loads the row, and pushes it through the rate limiter, the circuit
// breaker, and the bounded retry loop.
type Worker struct {
	id       int
	q        *Queue
	messages repository.NotificationRepository
	sender   Sender
	limiter  *ChannelLimiters
	clk      clock.Clock
	cfg      Config
	logger   *zap.Logger

	onSent     func(time.Duration)
	onFailed   func()
	onRequeued func()
}

// NewWorker constructs a worker. Hook fields are optional (nil = no-op).
func NewWorker(
	id int,
	q *Queue,
	messages repository.NotificationRepository,
	sender Sender,
	limiter *ChannelLimiters,
	clk clock.Clock,
	cfg Config,
	logger *zap.Logger,
	hooks Hooks,
) *Worker {
	if cfg.CoarseRetryDelay <= 0 {
		cfg.CoarseRetryDelay = 30 * time.Second
	}
	if hooks.OnSent == nil {
		hooks.OnSent = func(time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if hooks.OnRequeued == nil {
		hooks.OnRequeued = func() {}
	}
	return &Worker{
		id: id, q: q, messages: messages, sender: sender, limiter: limiter,
		clk: clk, cfg: cfg, logger: logger,
		onSent: hooks.OnSent, onFailed: hooks.OnFailed, onRequeued: hooks.OnRequeued,
	}
}

// Run blocks until ctx is cancelled, processing one message per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("dispatch worker started", zap.Int("id", w.id))
	for {
		id, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("dispatch worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, id)
	}
}

// Process handles a single message id end to end. Exported for tests; Run
// is the production entry point.
func (w *Worker) Process(ctx context.Context, id int64) {
	w.process(ctx, id)
}

func (w *Worker) process(ctx context.Context, id int64) {
	start := time.Now()
	log := w.logger.With(zap.Int64("message_id", id))

	msg := w.loadMessage(ctx, id, log)
	if msg == nil {
		return
	}
	if msg.Status == domain.NotificationSent {
		log.Debug("message already sent, skipping")
		return
	}

	if err := w.limiter.Wait(ctx, msg.Channel); err != nil {
		// ctx cancelled while waiting — worker is shutting down. The row
		// stays QUEUED and the janitor revives it.
		return
	}

	sendErr := w.sendWithRetry(ctx, msg)
	switch {
	case sendErr == nil:
		sentAt := w.clk.Now().UTC()
		if err := w.messages.MarkSent(ctx, id, sentAt); err != nil {
			log.Error("failed to mark as sent", zap.Error(err))
			return
		}
		w.onSent(time.Since(start))
		log.Info("notification sent", zap.Duration("latency", time.Since(start)))

	case ctx.Err() != nil:
		// Shutdown mid-dispatch: leave the row untouched for the janitor.
		return

	case errors.Is(sendErr, domain.ErrCircuitOpen):
		if err := w.messages.MarkRequeued(ctx, id, "circuit-open: "+sendErr.Error()); err != nil {
			log.Error("failed to requeue after open circuit", zap.Error(err))
			return
		}
		w.onRequeued()
		w.q.SubmitAfter(ctx, id, w.cfg.CircuitResetDelay)
		log.Warn("circuit open, message requeued", zap.Duration("retry_in", w.cfg.CircuitResetDelay))

	case errors.Is(sendErr, domain.ErrTransport),
		errors.Is(sendErr, domain.ErrUpstreamRetryable),
		errors.Is(sendErr, domain.ErrUpstreamRejected):
		if err := w.messages.MarkFailed(ctx, id, sendErr.Error()); err != nil {
			log.Error("failed to mark as failed", zap.Error(err))
			return
		}
		w.onFailed()
		log.Warn("delivery failed", zap.Error(sendErr))

	default:
		if err := w.messages.MarkFailed(ctx, id, "unexpected: "+sendErr.Error()); err != nil {
			log.Error("failed to mark as failed", zap.Error(err))
			return
		}
		w.onFailed()
		w.q.SubmitAfter(ctx, id, w.cfg.CoarseRetryDelay)
		log.Error("unexpected dispatch error", zap.Error(sendErr))
	}
}

// loadMessage fetches the row, re-reading a bounded number of times when
// it is not visible yet. Returns nil when the message should be dropped.
func (w *Worker) loadMessage(ctx context.Context, id int64, log *zap.Logger) *domain.NotificationMessage {
	for attempt := 0; ; attempt++ {
		msg, err := w.messages.Get(ctx, id)
		if err == nil {
			return msg
		}
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error("failed to fetch message", zap.Error(err))
			return nil
		}
		if attempt >= lookupRetries {
			log.Warn("message never became visible, dropping")
			return nil
		}
		if !w.sleep(ctx, lookupDelay) {
			return nil
		}
	}
}

// sendWithRetry runs the bounded retry loop of one dispatch invocation.
// Transport errors, retryable upstream statuses, and an open circuit are
// retried with backoff; a permanent rejection returns immediately.
func (w *Worker) sendWithRetry(ctx context.Context, msg *domain.NotificationMessage) error {
	var err error
	for attempt := 0; attempt < w.cfg.RetryMaxAttempts; attempt++ {
		if attempt > 0 {
			if !w.sleep(ctx, w.backoff(attempt-1)) {
				return ctx.Err()
			}
		}
		err = w.sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}

// backoff returns min(base·2^k, max) with ±20% jitter.
func (w *Worker) backoff(k int) time.Duration {
	d := w.cfg.BackoffBase << k
	if d <= 0 || d > w.cfg.BackoffMax {
		d = w.cfg.BackoffMax
	}
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * jitter)
}

// sleep waits for d or until ctx is cancelled; reports whether the full
// wait elapsed.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrTransport) ||
		errors.Is(err, domain.ErrUpstreamRetryable) ||
		errors.Is(err, domain.ErrCircuitOpen)
}
