package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendahub/booking-backend/internal/domain"
)

type pgAppointmentRepository struct {
	pool *pgxpool.Pool
}

// NewPgAppointmentRepository returns an AppointmentRepository backed by PostgreSQL.
func NewPgAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &pgAppointmentRepository{pool: pool}
}

func (r *pgAppointmentRepository) CreatePendingWithEvent(ctx context.Context, appt *domain.Appointment, evt *domain.OutboxEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments
			(id, user_id, provider_id, starts_at, ends_at, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		appt.ID, appt.UserID, appt.ProviderID, appt.StartsAt, appt.EndsAt,
		appt.Status, appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlotTaken
		}
		return fmt.Errorf("insert appointment: %w", err)
	}

	if err := insertOutboxEvent(ctx, tx, evt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit appointment: %w", err)
	}
	return nil
}

func (r *pgAppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, provider_id, starts_at, ends_at, status, created_at, updated_at
		FROM appointments WHERE id = $1`, id)

	appt, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return appt, err
}

func (r *pgAppointmentRepository) CancelWithEvent(ctx context.Context, id uuid.UUID, evt *domain.OutboxEvent) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// The status guard makes the cancel idempotent: a second cancel
	// matches zero rows and must not append a second event.
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status <> $1`,
		domain.AppointmentCanceled, id,
	)
	if err != nil {
		return false, fmt.Errorf("cancel appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := insertOutboxEvent(ctx, tx, evt); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit cancel: %w", err)
	}
	return true, nil
}

func (r *pgAppointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, provider_id, starts_at, ends_at, status, created_at, updated_at
		FROM appointments
		WHERE user_id = $1
		ORDER BY starts_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []*domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func (r *pgAppointmentRepository) SlotsTaken(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT starts_at
		FROM appointments
		WHERE provider_id = $1
		  AND starts_at >= $2 AND starts_at < $3
		  AND status IN ('PENDING','CONFIRMED')`, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("slots taken: %w", err)
	}
	defer rows.Close()

	var taken []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		taken = append(taken, t)
	}
	return taken, rows.Err()
}

// ---- helpers ----

// scanAppointment reads a single appointment row from any pgx row type.
func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID, &a.UserID, &a.ProviderID, &a.StartsAt, &a.EndsAt,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// isUniqueViolation reports whether err is a PostgreSQL 23505. The partial
// unique index on appointments is the only slot arbiter, so this mapping is
// the single place a losing writer is detected.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
