package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/repository"
)

// Service implements signup, login, refresh rotation, and logout.
// Refresh tokens are single-use: redeeming one revokes it and issues a
// fresh pair. Only bcrypt hashes of secrets ever reach storage.
type Service struct {
	users      repository.UserRepository
	issuer     *TokenIssuer
	refreshTTL time.Duration
	clk        clock.Clock
	logger     *zap.Logger
}

func NewService(
	users repository.UserRepository,
	issuer *TokenIssuer,
	refreshTTL time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	return &Service{users: users, issuer: issuer, refreshTTL: refreshTTL, clk: clk, logger: logger}
}

// Signup creates the account and logs it in. A duplicate email yields
// ErrEmailTaken.
func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		CreatedAt:    s.clk.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID.String()))
	return s.issuePair(ctx, user.ID)
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user.ID)
}

// Refresh redeems a refresh token, revokes it, and returns a rotated pair.
// Any malformed, unknown, revoked, or expired token yields
// ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, plaintext string) (*domain.TokenPair, error) {
	row, secret, err := s.lookup(ctx, plaintext)
	if err != nil {
		return nil, err
	}
	if !row.Valid(s.clk.Now()) {
		return nil, domain.ErrInvalidRefreshToken
	}
	if bcrypt.CompareHashAndPassword([]byte(row.TokenHash), []byte(secret)) != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	if err := s.users.RevokeRefreshToken(ctx, row.ID); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, row.UserID)
}

// Logout revokes the refresh token. Unknown or already revoked tokens are
// not an error: logout always succeeds from the client's point of view.
func (s *Service) Logout(ctx context.Context, plaintext string) error {
	row, _, err := s.lookup(ctx, plaintext)
	if err != nil {
		return nil
	}
	return s.users.RevokeRefreshToken(ctx, row.ID)
}

// VerifyAccess validates an access token and returns the user id. Used by
// the HTTP auth middleware.
func (s *Service) VerifyAccess(tokenString string) (uuid.UUID, error) {
	return s.issuer.Verify(tokenString)
}

// ---- private helpers ----

func (s *Service) lookup(ctx context.Context, plaintext string) (*domain.RefreshToken, string, error) {
	id, secret, err := splitRefreshToken(plaintext)
	if err != nil {
		return nil, "", err
	}
	row, err := s.users.GetRefreshToken(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, "", err
	}
	return row, secret, nil
}

func (s *Service) issuePair(ctx context.Context, userID uuid.UUID) (*domain.TokenPair, error) {
	now := s.clk.Now().UTC()

	access, err := s.issuer.Issue(userID, now)
	if err != nil {
		return nil, err
	}

	secret, err := newRefreshSecret()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash refresh secret: %w", err)
	}

	row := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: string(hash),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.users.CreateRefreshToken(ctx, row); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: row.ID.String() + "." + secret,
		TokenType:    "bearer",
	}, nil
}
