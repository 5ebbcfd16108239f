package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/domain"
)

// MockProviderRepository is a hand-written, in-memory implementation of
// ProviderRepository used in unit tests.
type MockProviderRepository struct {
	mu         sync.RWMutex
	providers  map[uuid.UUID]*domain.Provider
	workHours  map[uuid.UUID][]domain.WorkHourBlock
	nextHourID int64

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr error
	GetErr    error
}

func NewMockProviderRepository() *MockProviderRepository {
	return &MockProviderRepository{
		providers: make(map[uuid.UUID]*domain.Provider),
		workHours: make(map[uuid.UUID][]domain.WorkHourBlock),
	}
}

func (m *MockProviderRepository) Create(_ context.Context, p *domain.Provider) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.providers[p.ID] = &clone
	return nil
}

func (m *MockProviderRepository) Get(_ context.Context, id uuid.UUID) (*domain.Provider, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *MockProviderRepository) List(_ context.Context) ([]*domain.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Provider, 0, len(m.providers))
	for _, p := range m.providers {
		clone := *p
		result = append(result, &clone)
	}
	return result, nil
}

func (m *MockProviderRepository) Update(_ context.Context, p *domain.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.providers[p.ID]; ok {
		existing.DisplayName = p.DisplayName
		existing.EstablishmentID = p.EstablishmentID
	}
	return nil
}

func (m *MockProviderRepository) AddWorkHour(_ context.Context, block *domain.WorkHourBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.workHours[block.ProviderID] {
		if b.Weekday == block.Weekday && b.Start == block.Start && b.End == block.End {
			return domain.ErrDuplicateWorkHour
		}
	}
	m.nextHourID++
	block.ID = m.nextHourID
	m.workHours[block.ProviderID] = append(m.workHours[block.ProviderID], *block)
	return nil
}

func (m *MockProviderRepository) ListWorkHours(_ context.Context, providerID uuid.UUID) ([]domain.WorkHourBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.WorkHourBlock(nil), m.workHours[providerID]...), nil
}

func (m *MockProviderRepository) DeleteWorkHour(_ context.Context, providerID uuid.UUID, workHourID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blocks := m.workHours[providerID]
	for i, b := range blocks {
		if b.ID == workHourID {
			m.workHours[providerID] = append(blocks[:i], blocks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var _ ProviderRepository = (*MockProviderRepository)(nil)
