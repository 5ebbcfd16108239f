package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/domain"
)

// MockAppointmentRepository is a hand-written, in-memory implementation of
// AppointmentRepository used in unit tests. It reproduces the partial unique
// index semantics: an occupying row blocks the slot, a CANCELED one does not.
type MockAppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*domain.Appointment
	events       []*domain.OutboxEvent

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr error
	GetErr    error
	CancelErr error
}

func NewMockAppointmentRepository() *MockAppointmentRepository {
	return &MockAppointmentRepository{
		appointments: make(map[uuid.UUID]*domain.Appointment),
	}
}

func (m *MockAppointmentRepository) CreatePendingWithEvent(_ context.Context, appt *domain.Appointment, evt *domain.OutboxEvent) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.appointments {
		if existing.ProviderID == appt.ProviderID &&
			existing.StartsAt.Equal(appt.StartsAt) &&
			existing.Status.Occupies() {
			return domain.ErrSlotTaken
		}
	}
	clone := *appt
	m.appointments[appt.ID] = &clone
	evtClone := *evt
	m.events = append(m.events, &evtClone)
	return nil
}

func (m *MockAppointmentRepository) Get(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	appt, ok := m.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *appt
	return &clone, nil
}

func (m *MockAppointmentRepository) CancelWithEvent(_ context.Context, id uuid.UUID, evt *domain.OutboxEvent) (bool, error) {
	if m.CancelErr != nil {
		return false, m.CancelErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[id]
	if !ok || appt.Status == domain.AppointmentCanceled {
		return false, nil
	}
	appt.Status = domain.AppointmentCanceled
	appt.UpdatedAt = time.Now().UTC()
	evtClone := *evt
	m.events = append(m.events, &evtClone)
	return true, nil
}

func (m *MockAppointmentRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Appointment
	for _, appt := range m.appointments {
		if appt.UserID == userID {
			clone := *appt
			result = append(result, &clone)
		}
	}
	// starts_at descending, matching the SQL ORDER BY.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].StartsAt.After(result[i].StartsAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (m *MockAppointmentRepository) SlotsTaken(_ context.Context, providerID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var taken []time.Time
	for _, appt := range m.appointments {
		if appt.ProviderID != providerID || !appt.Status.Occupies() {
			continue
		}
		if !appt.StartsAt.Before(from) && appt.StartsAt.Before(to) {
			taken = append(taken, appt.StartsAt)
		}
	}
	return taken, nil
}

// Events returns a snapshot of every outbox event appended so far.
func (m *MockAppointmentRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.OutboxEvent, 0, len(m.events))
	for _, evt := range m.events {
		clone := *evt
		result = append(result, &clone)
	}
	return result
}

var _ AppointmentRepository = (*MockAppointmentRepository)(nil)
