package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/domain"
)

// MockWorkScheduleRepository is a hand-written, in-memory implementation of
// WorkScheduleRepository used in unit tests.
type MockWorkScheduleRepository struct {
	mu     sync.RWMutex
	blocks map[uuid.UUID][]domain.WorkHourBlock

	// Optional error override — set in tests to simulate failure paths.
	BlocksErr error
}

func NewMockWorkScheduleRepository() *MockWorkScheduleRepository {
	return &MockWorkScheduleRepository{
		blocks: make(map[uuid.UUID][]domain.WorkHourBlock),
	}
}

// AddBlock registers a block for the provider. Providers become known to
// the mock the first time a block is added for them; use AddProvider for
// a provider with an empty schedule.
func (m *MockWorkScheduleRepository) AddBlock(providerID uuid.UUID, weekday int, start, end string) {
	s, _ := domain.ParseTimeOfDay(start)
	e, _ := domain.ParseTimeOfDay(end)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[providerID] = append(m.blocks[providerID], domain.WorkHourBlock{
		ID:         int64(len(m.blocks[providerID]) + 1),
		ProviderID: providerID,
		Weekday:    weekday,
		Start:      s,
		End:        e,
	})
}

// AddProvider registers a provider with no work hours at all.
func (m *MockWorkScheduleRepository) AddProvider(providerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[providerID]; !ok {
		m.blocks[providerID] = []domain.WorkHourBlock{}
	}
}

func (m *MockWorkScheduleRepository) BlocksFor(_ context.Context, providerID uuid.UUID, weekday int) ([]domain.WorkHourBlock, error) {
	if m.BlocksErr != nil {
		return nil, m.BlocksErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	all, ok := m.blocks[providerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var result []domain.WorkHourBlock
	for _, b := range all {
		if b.Weekday == weekday {
			result = append(result, b)
		}
	}
	return result, nil
}

var _ WorkScheduleRepository = (*MockWorkScheduleRepository)(nil)
