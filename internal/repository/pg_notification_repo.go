package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendahub/booking-backend/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Get(ctx context.Context, id int64) (*domain.NotificationMessage, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, channel, recipient, template, variables, status,
		       attempts, last_error, appointment_id, created_at, sent_at
		FROM notification_messages WHERE id = $1`, id)

	msg, err := scanNotificationMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return msg, err
}

func (r *pgNotificationRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_messages
		SET status = 'SENT', sent_at = $1, attempts = attempts + 1, last_error = NULL
		WHERE id = $2`, sentAt, id)
	return err
}

func (r *pgNotificationRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_messages
		SET status = 'FAILED', attempts = attempts + 1, last_error = $1
		WHERE id = $2`, lastError, id)
	return err
}

func (r *pgNotificationRepository) MarkRequeued(ctx context.Context, id int64, lastError string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_messages
		SET status = 'QUEUED', attempts = attempts + 1, last_error = $1
		WHERE id = $2`, lastError, id)
	return err
}

func (r *pgNotificationRepository) ResetToQueued(ctx context.Context, id int64) error {
	// Guarded on FAILED so a janitor lagging behind the dispatcher can
	// never un-send a row.
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_messages
		SET status = 'QUEUED'
		WHERE id = $1 AND status = 'FAILED'`, id)
	return err
}

func (r *pgNotificationRepository) FindStuckQueued(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM notification_messages
		WHERE status = 'QUEUED' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("find stuck queued: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *pgNotificationRepository) FindRetryableFailed(ctx context.Context, maxAttempts, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM notification_messages
		WHERE status = 'FAILED' AND attempts < $1
		ORDER BY created_at ASC
		LIMIT $2`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("find retryable failed: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *pgNotificationRepository) CountDeadFailed(ctx context.Context, maxAttempts int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notification_messages
		WHERE status = 'FAILED' AND attempts >= $1`, maxAttempts).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dead failed: %w", err)
	}
	return n, nil
}

// ---- helpers ----

// insertNotificationMessage creates a QUEUED row inside the caller's
// transaction and returns its id. Only OutboxRepository.PublishBatch
// creates rows, as part of its batch commit.
func insertNotificationMessage(ctx context.Context, tx pgx.Tx, msg *domain.NotificationMessage) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO notification_messages
			(channel, recipient, template, variables, status, attempts, appointment_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		msg.Channel, msg.Recipient, msg.Template, msg.Variables,
		msg.Status, msg.Attempts, msg.AppointmentID, msg.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert notification message: %w", err)
	}
	return id, nil
}

// scanNotificationMessage reads a single message row from any pgx row type.
func scanNotificationMessage(row pgx.Row) (*domain.NotificationMessage, error) {
	var m domain.NotificationMessage
	err := row.Scan(
		&m.ID, &m.Channel, &m.Recipient, &m.Template, &m.Variables,
		&m.Status, &m.Attempts, &m.LastError, &m.AppointmentID,
		&m.CreatedAt, &m.SentAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
