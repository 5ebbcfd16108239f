package repository

import (
	"context"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

// NotificationRepository defines persistence for notification messages.
// Row creation happens inside OutboxRepository.PublishBatch; everything
// here is the dispatcher's and the janitor's side: point updates on a
// single row plus the two revival scans.
// The pgx implementation is in pg_notification_repo.go.
// Tests use a hand-written mock (mock_notification_repo.go).
type NotificationRepository interface {
	Get(ctx context.Context, id int64) (*domain.NotificationMessage, error)

	// MarkSent records a successful delivery: SENT, sent_at, attempts+1.
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error

	// MarkFailed records an exhausted or rejected delivery: FAILED,
	// attempts+1, last_error. The janitor owns any later revival.
	MarkFailed(ctx context.Context, id int64, lastError string) error

	// MarkRequeued records a delivery aborted by the open circuit:
	// back to QUEUED, attempts+1, last_error.
	MarkRequeued(ctx context.Context, id int64, lastError string) error

	// ResetToQueued promotes a FAILED row back to QUEUED without touching
	// attempts. Used only by the janitor.
	ResetToQueued(ctx context.Context, id int64) error

	// FindStuckQueued returns ids of QUEUED rows created before cutoff.
	FindStuckQueued(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)

	// FindRetryableFailed returns ids of FAILED rows below the attempts ceiling.
	FindRetryableFailed(ctx context.Context, maxAttempts, limit int) ([]int64, error)

	// CountDeadFailed reports FAILED rows at or above the attempts ceiling.
	CountDeadFailed(ctx context.Context, maxAttempts int) (int, error)
}
