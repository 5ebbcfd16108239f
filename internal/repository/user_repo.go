package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/domain"
)

// UserRepository defines persistence for user accounts and their refresh
// tokens. Rotation bookkeeping (revoking the redeemed row, inserting its
// successor) is driven by the auth service; this layer only stores rows.
// The pgx implementation is in pg_user_repo.go.
// Tests use a hand-written mock (mock_user_repo.go).
type UserRepository interface {
	// CreateUser inserts the account. A duplicate email yields ErrEmailTaken.
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	CreateRefreshToken(ctx context.Context, t *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, id uuid.UUID) (*domain.RefreshToken, error)

	// RevokeRefreshToken stamps revoked_at. Revoking an already revoked
	// row is a no-op, which keeps logout idempotent.
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error
}
