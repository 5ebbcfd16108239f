package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/domain"
)

// AppointmentRepository defines persistence for appointments together with
// the outbox rows that must commit atomically with them. Slot uniqueness is
// enforced by the partial unique index on (provider_id, starts_at), never by
// a prior read; a violation surfaces as domain.ErrSlotTaken.
// The pgx implementation is in pg_appointment_repo.go.
// Tests use a hand-written mock (mock_appointment_repo.go).
type AppointmentRepository interface {
	// CreatePendingWithEvent inserts the appointment and appends evt in one
	// transaction. Either both rows commit or neither does.
	CreatePendingWithEvent(ctx context.Context, appt *domain.Appointment, evt *domain.OutboxEvent) error

	Get(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)

	// CancelWithEvent flips the row to CANCELED and appends evt in one
	// transaction. It returns false without appending when the row was
	// already CANCELED, which makes repeated cancels idempotent even
	// under concurrency.
	CancelWithEvent(ctx context.Context, id uuid.UUID, evt *domain.OutboxEvent) (bool, error)

	// ListByUser returns the user's appointments ordered by starts_at descending.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Appointment, error)

	// SlotsTaken returns the starts_at instants of PENDING and CONFIRMED
	// appointments in the half-open window [from, to).
	SlotsTaken(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]time.Time, error)
}
