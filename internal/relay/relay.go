package relay

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/dispatch"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/repository"
)

// RecipientResolver maps an appointment to the contact the notification
// should reach. Resolution failures are not fatal: the relay falls back
// to the configured placeholder so the event is never stuck unpublished.
type RecipientResolver interface {
	Resolve(ctx context.Context, appointmentID uuid.UUID) (string, error)
}

// RecipientResolverFunc adapts a function to the RecipientResolver interface.
type RecipientResolverFunc func(ctx context.Context, appointmentID uuid.UUID) (string, error)

func (f RecipientResolverFunc) Resolve(ctx context.Context, appointmentID uuid.UUID) (string, error) {
	return f(ctx, appointmentID)
}

// AppointmentRecipientResolver resolves through the booked appointment.
// Users carry no contact number yet, so a found appointment resolves to
// the empty string and the relay substitutes the placeholder recipient;
// a missing appointment surfaces as an error.
// TODO: add a phone column to users and return it here.
func AppointmentRecipientResolver(appts repository.AppointmentRepository) RecipientResolver {
	return RecipientResolverFunc(func(ctx context.Context, appointmentID uuid.UUID) (string, error) {
		if _, err := appts.Get(ctx, appointmentID); err != nil {
			return "", err
		}
		return "", nil
	})
}

// submitDelay gives a freshly committed message row time to become
// visible before a dispatch worker loads it.
const submitDelay = time.Second

// Relay drains the transactional outbox on a fixed tick. Each tick claims
// a batch of unpublished events, materializes one QUEUED notification
// message per notifiable event, stamps published_at, commits everything
// as a single transaction, and then hands the new message ids to the
// dispatcher. A failed batch commits nothing and is retried next tick.
type Relay struct {
	outbox      repository.OutboxRepository
	resolver    RecipientResolver
	q           *dispatch.Queue
	clk         clock.Clock
	batchSize   int
	interval    time.Duration
	placeholder string
	logger      *zap.Logger

	onPublished func(n int)
	onBacklog   func(n int)
}

// Hooks carries the metric callback functions injected by main.
type Hooks struct {
	OnPublished func(n int)
	OnBacklog   func(n int)
}

func New(
	outbox repository.OutboxRepository,
	resolver RecipientResolver,
	q *dispatch.Queue,
	clk clock.Clock,
	batchSize int,
	interval time.Duration,
	placeholder string,
	logger *zap.Logger,
	hooks Hooks,
) *Relay {
	if hooks.OnPublished == nil {
		hooks.OnPublished = func(int) {}
	}
	if hooks.OnBacklog == nil {
		hooks.OnBacklog = func(int) {}
	}
	return &Relay{
		outbox: outbox, resolver: resolver, q: q, clk: clk,
		batchSize: batchSize, interval: interval, placeholder: placeholder,
		logger:      logger,
		onPublished: hooks.OnPublished, onBacklog: hooks.OnBacklog,
	}
}

// Run ticks every interval until ctx is cancelled. An in-flight batch
// runs to completion; the tick loop stops between batches.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick drains one batch. Exported so tests and operators can drive the
// relay without the ticker.
func (r *Relay) Tick(ctx context.Context) {
	ids, published, err := r.outbox.PublishBatch(ctx, r.batchSize, r.clk.Now().UTC(), func(evt *domain.OutboxEvent) *domain.NotificationMessage {
		return r.buildMessage(ctx, evt)
	})
	if err != nil {
		r.logger.Error("outbox batch failed", zap.Error(err))
		return
	}

	// Submission happens only after the batch committed; a lost
	// submission leaves a QUEUED row for the janitor.
	for _, id := range ids {
		r.q.SubmitAfter(ctx, id, submitDelay)
	}

	if published > 0 {
		r.onPublished(published)
		r.logger.Info("outbox batch published",
			zap.Int("events", published),
			zap.Int("messages", len(ids)),
		)
	}

	if backlog, err := r.outbox.CountUnpublished(ctx); err == nil {
		r.onBacklog(backlog)
	}
}

// buildMessage turns one drained event into its notification message.
// Returning nil marks the event published without a message; unknown
// event types must not wedge the outbox.
func (r *Relay) buildMessage(ctx context.Context, evt *domain.OutboxEvent) *domain.NotificationMessage {
	if !evt.EventType.Notifiable() {
		r.logger.Warn("skipping unknown outbox event type",
			zap.String("event_type", string(evt.EventType)),
			zap.String("event_id", evt.ID.String()),
		)
		return nil
	}

	recipient, err := r.resolver.Resolve(ctx, evt.AggregateID)
	if err != nil || recipient == "" {
		recipient = r.placeholder
	}

	appointmentID := evt.AggregateID
	return &domain.NotificationMessage{
		Channel:       domain.ChannelWhatsApp,
		Recipient:     recipient,
		Template:      evt.EventType.Template(),
		Variables:     evt.Payload,
		Status:        domain.NotificationQueued,
		AppointmentID: &appointmentID,
		CreatedAt:     r.clk.Now().UTC(),
	}
}
