package repository

import (
	"context"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

// MessageBuilder turns a drained outbox event into the notification message
// it should enqueue. Returning nil records the event as published without
// creating a message (unknown event types must not wedge the outbox).
type MessageBuilder func(evt *domain.OutboxEvent) *domain.NotificationMessage

// OutboxRepository drains the transactional outbox. Events are appended by
// AppointmentRepository inside booking transactions; this interface covers
// the relay side.
// The pgx implementation is in pg_outbox_repo.go.
// Tests use a hand-written mock (mock_outbox_repo.go).
type OutboxRepository interface {
	// PublishBatch claims up to limit unpublished events in created_at
	// order, inserts the notification message built for each, stamps
	// published_at, and commits everything as one transaction. It returns
	// the ids of the inserted messages and the number of events published.
	// On error nothing is committed and the next tick retries the batch.
	PublishBatch(ctx context.Context, limit int, publishedAt time.Time, build MessageBuilder) (ids []int64, published int, err error)

	// CountUnpublished reports the current outbox backlog.
	CountUnpublished(ctx context.Context) (int, error)
}
