package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/domain"
)

// WorkScheduleRepository is the read side of provider schedules used by
// availability and booking checks.
// The pgx implementation is in pg_schedule_repo.go.
// Tests use a hand-written mock (mock_schedule_repo.go).
type WorkScheduleRepository interface {
	// BlocksFor returns every block the provider has on weekday
	// (0=Sunday .. 6=Saturday). An existing provider with no blocks
	// yields an empty slice; a missing provider yields ErrNotFound.
	BlocksFor(ctx context.Context, providerID uuid.UUID, weekday int) ([]domain.WorkHourBlock, error)
}
