package dispatch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/repository"
)

// Pool manages the lifecycle of all dispatch workers. Every worker shares
// the same queue, sender chain, and rate limiter; the circuit breaker
// state inside the sender is therefore process-wide.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

func NewPool(
	count int,
	q *Queue,
	messages repository.NotificationRepository,
	sender Sender,
	limiter *ChannelLimiters,
	clk clock.Clock,
	cfg Config,
	logger *zap.Logger,
	hooks Hooks,
) *Pool {
	workers := make([]*Worker, count)
	for i := range workers {
		workers[i] = NewWorker(
			i, q, messages, sender, limiter, clk, cfg,
			logger.With(zap.Int("worker_id", i)),
			hooks,
		)
	}
	return &Pool{workers: workers}
}

// Start launches all workers as goroutines. Cancelling ctx triggers a
// graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context so in-flight messages finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
