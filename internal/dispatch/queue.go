package dispatch

import (
	"context"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

// Queue is the bounded in-process hand-off between the outbox relay, the
// janitor, and the dispatcher pool. It carries message ids only; workers
// fetch the full row from the store, keeping the queue lightweight and the
// database authoritative.
type Queue struct {
	ch chan int64
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan int64, size)}
}

// Submit places an id on the queue without blocking. A full queue returns
// ErrQueueFull immediately; the row stays QUEUED and the janitor will
// submit it again later, so dropping here is safe.
func (q *Queue) Submit(id int64) error {
	select {
	case q.ch <- id:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// SubmitAfter submits id once delay has elapsed, in its own goroutine.
// The delay absorbs the read-visibility race between a relay commit and
// the dispatcher's first load. Cancelled contexts and a full queue both
// drop the submission; the janitor is the safety net either way.
func (q *Queue) SubmitAfter(ctx context.Context, id int64, delay time.Duration) {
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		select {
		case q.ch <- id:
		case <-ctx.Done():
		}
	}()
}

// Dequeue blocks until an id is available or ctx is cancelled.
// Returns (0, false) on cancellation — the graceful shutdown signal.
func (q *Queue) Dequeue(ctx context.Context) (int64, bool) {
	select {
	case id := <-q.ch:
		return id, true
	case <-ctx.Done():
		return 0, false
	}
}

// Depth returns the number of ids currently waiting.
func (q *Queue) Depth() int { return len(q.ch) }
