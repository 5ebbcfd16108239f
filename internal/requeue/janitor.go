package requeue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/dispatch"
	"github.com/agendahub/booking-backend/internal/repository"
)

// scanLimit caps how many rows of each kind one tick revives.
const scanLimit = 200

// resubmitDelay spaces revived submissions slightly apart from the tick.
const resubmitDelay = time.Second

// Janitor periodically revives deliveries the pipeline lost track of:
// QUEUED rows older than the staleness cutoff (their submission was
// dropped or the process died before dispatch) and FAILED rows still
// below the attempts ceiling. FAILED rows at or above the ceiling are
// terminal and only counted, never touched.
type Janitor struct {
	messages     repository.NotificationRepository
	q            *dispatch.Queue
	clk          clock.Clock
	staleAfter   time.Duration
	maxAttempts  int
	interval     time.Duration
	logger       *zap.Logger

	onRequeued func(n int)
	onDead     func(n int)
}

// Hooks carries the metric callback functions injected by main.
type Hooks struct {
	OnRequeued func(n int)
	OnDead     func(n int)
}

func New(
	messages repository.NotificationRepository,
	q *dispatch.Queue,
	clk clock.Clock,
	staleAfter time.Duration,
	maxAttempts int,
	interval time.Duration,
	logger *zap.Logger,
	hooks Hooks,
) *Janitor {
	if hooks.OnRequeued == nil {
		hooks.OnRequeued = func(int) {}
	}
	if hooks.OnDead == nil {
		hooks.OnDead = func(int) {}
	}
	return &Janitor{
		messages: messages, q: q, clk: clk,
		staleAfter: staleAfter, maxAttempts: maxAttempts, interval: interval,
		logger:     logger,
		onRequeued: hooks.OnRequeued, onDead: hooks.OnDead,
	}
}

// Run ticks every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("stuck requeuer started", zap.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("stuck requeuer stopping")
			return
		case <-ticker.C:
			j.Tick(ctx)
		}
	}
}

// Tick runs one janitor pass. Exported so tests can drive it directly.
func (j *Janitor) Tick(ctx context.Context) {
	revived := 0

	cutoff := j.clk.Now().UTC().Add(-j.staleAfter)
	stuck, err := j.messages.FindStuckQueued(ctx, cutoff, scanLimit)
	if err != nil {
		j.logger.Error("stuck scan failed", zap.Error(err))
	} else {
		for _, id := range stuck {
			j.q.SubmitAfter(ctx, id, resubmitDelay)
		}
		revived += len(stuck)
	}

	failed, err := j.messages.FindRetryableFailed(ctx, j.maxAttempts, scanLimit)
	if err != nil {
		j.logger.Error("failed scan failed", zap.Error(err))
	} else {
		for _, id := range failed {
			// Promote back to QUEUED first so a crash between here and
			// the submission still leaves a row the next tick finds.
			if err := j.messages.ResetToQueued(ctx, id); err != nil {
				j.logger.Error("reset to queued failed", zap.Int64("message_id", id), zap.Error(err))
				continue
			}
			j.q.SubmitAfter(ctx, id, resubmitDelay)
			revived++
		}
	}

	if revived > 0 {
		j.onRequeued(revived)
		j.logger.Info("revived stalled deliveries", zap.Int("count", revived))
	}

	if dead, err := j.messages.CountDeadFailed(ctx, j.maxAttempts); err == nil {
		j.onDead(dead)
	}
}
