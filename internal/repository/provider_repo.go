package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/domain"
)

// ProviderRepository defines persistence for providers and the management
// side of their work-hour blocks.
// The pgx implementation is in pg_provider_repo.go.
// Tests use a hand-written mock (mock_provider_repo.go).
type ProviderRepository interface {
	Create(ctx context.Context, p *domain.Provider) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Provider, error)
	List(ctx context.Context) ([]*domain.Provider, error)
	Update(ctx context.Context, p *domain.Provider) error

	// AddWorkHour inserts the block and fills in its generated id.
	// An exact duplicate block yields ErrDuplicateWorkHour.
	AddWorkHour(ctx context.Context, block *domain.WorkHourBlock) error
	ListWorkHours(ctx context.Context, providerID uuid.UUID) ([]domain.WorkHourBlock, error)

	// DeleteWorkHour removes the block if it belongs to providerID and
	// reports whether a row was deleted.
	DeleteWorkHour(ctx context.Context, providerID uuid.UUID, workHourID int64) (bool, error)
}
