package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendahub/booking-backend/internal/domain"
)

type pgOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewPgOutboxRepository returns an OutboxRepository backed by PostgreSQL.
func NewPgOutboxRepository(pool *pgxpool.Pool) OutboxRepository {
	return &pgOutboxRepository{pool: pool}
}

func (r *pgOutboxRepository) PublishBatch(ctx context.Context, limit int, publishedAt time.Time, build MessageBuilder) ([]int64, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// SKIP LOCKED lets several relay replicas drain disjoint batches
	// without serializing on each other.
	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, headers, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("pull unpublished: %w", err)
	}

	events, err := scanOutboxEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	if len(events) == 0 {
		return nil, 0, nil
	}

	var ids []int64
	for _, evt := range events {
		if msg := build(evt); msg != nil {
			id, err := insertNotificationMessage(ctx, tx, msg)
			if err != nil {
				return nil, 0, err
			}
			ids = append(ids, id)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`, publishedAt, evt.ID); err != nil {
			return nil, 0, fmt.Errorf("mark published: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit publish batch: %w", err)
	}
	return ids, len(events), nil
}

func (r *pgOutboxRepository) CountUnpublished(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE published_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unpublished: %w", err)
	}
	return n, nil
}

// ---- helpers ----

// insertOutboxEvent appends evt inside the caller's transaction. Booking
// writes and their events must share a transaction, so this helper is what
// AppointmentRepository composes into its own commits.
func insertOutboxEvent(ctx context.Context, tx pgx.Tx, evt *domain.OutboxEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, headers, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		evt.ID, evt.AggregateType, evt.AggregateID, evt.EventType,
		evt.Payload, evt.Headers, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func scanOutboxEvents(rows pgx.Rows) ([]*domain.OutboxEvent, error) {
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var evt domain.OutboxEvent
		err := rows.Scan(
			&evt.ID, &evt.AggregateType, &evt.AggregateID, &evt.EventType,
			&evt.Payload, &evt.Headers, &evt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &evt)
	}
	return events, rows.Err()
}
