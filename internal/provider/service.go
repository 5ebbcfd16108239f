package provider

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/repository"
)

// Service manages providers and their weekly work-hour blocks. Mutations
// require the caller to own the provider; reads are open to any
// authenticated user.
type Service struct {
	repo   repository.ProviderRepository
	clk    clock.Clock
	logger *zap.Logger
}

func NewService(repo repository.ProviderRepository, clk clock.Clock, logger *zap.Logger) *Service {
	return &Service{repo: repo, clk: clk, logger: logger}
}

// Create registers a provider owned by userID.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req domain.UpsertProviderRequest) (*domain.Provider, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &domain.Provider{
		ID:              uuid.New(),
		UserID:          userID,
		EstablishmentID: req.EstablishmentID,
		DisplayName:     req.DisplayName,
		CreatedAt:       s.clk.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("provider created", zap.String("provider_id", p.ID.String()))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Provider, error) {
	return s.repo.List(ctx)
}

// Update patches the provider's mutable fields after an owner check.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, req domain.UpsertProviderRequest) (*domain.Provider, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.ownedProvider(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	p.DisplayName = req.DisplayName
	p.EstablishmentID = req.EstablishmentID
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddWorkHour appends a block to the owner's weekly schedule.
func (s *Service) AddWorkHour(ctx context.Context, providerID, userID uuid.UUID, req domain.CreateWorkHourRequest) (*domain.WorkHourBlock, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedProvider(ctx, providerID, userID); err != nil {
		return nil, err
	}
	block := req.Block(providerID)
	if err := s.repo.AddWorkHour(ctx, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

func (s *Service) ListWorkHours(ctx context.Context, providerID uuid.UUID) ([]domain.WorkHourBlock, error) {
	if _, err := s.repo.Get(ctx, providerID); err != nil {
		return nil, err
	}
	return s.repo.ListWorkHours(ctx, providerID)
}

// DeleteWorkHour removes one block from the owner's schedule. A block id
// that belongs to a different provider reads as absent, not forbidden.
func (s *Service) DeleteWorkHour(ctx context.Context, providerID, userID uuid.UUID, workHourID int64) error {
	if _, err := s.ownedProvider(ctx, providerID, userID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteWorkHour(ctx, providerID, workHourID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) ownedProvider(ctx context.Context, id, userID uuid.UUID) (*domain.Provider, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
