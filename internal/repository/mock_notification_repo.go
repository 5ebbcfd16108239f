package repository

import (
	"context"
	"sync"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

// MockNotificationRepository is a hand-written, in-memory implementation of
// NotificationRepository used in unit tests.
type MockNotificationRepository struct {
	mu       sync.RWMutex
	nextID   int64
	messages map[int64]*domain.NotificationMessage

	// Optional error overrides — set in tests to simulate failure paths.
	GetErr      error
	MarkSentErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{messages: make(map[int64]*domain.NotificationMessage)}
}

// Add seeds a message and returns its assigned id.
func (m *MockNotificationRepository) Add(msg *domain.NotificationMessage) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	clone := *msg
	clone.ID = m.nextID
	m.messages[clone.ID] = &clone
	return clone.ID
}

func (m *MockNotificationRepository) Get(_ context.Context, id int64) (*domain.NotificationMessage, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *msg
	return &clone, nil
}

func (m *MockNotificationRepository) MarkSent(_ context.Context, id int64, sentAt time.Time) error {
	if m.MarkSentErr != nil {
		return m.MarkSentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		msg.Status = domain.NotificationSent
		msg.SentAt = &sentAt
		msg.Attempts++
		msg.LastError = nil
	}
	return nil
}

func (m *MockNotificationRepository) MarkFailed(_ context.Context, id int64, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		msg.Status = domain.NotificationFailed
		msg.Attempts++
		msg.LastError = &lastError
	}
	return nil
}

func (m *MockNotificationRepository) MarkRequeued(_ context.Context, id int64, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		msg.Status = domain.NotificationQueued
		msg.Attempts++
		msg.LastError = &lastError
	}
	return nil
}

func (m *MockNotificationRepository) ResetToQueued(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok && msg.Status == domain.NotificationFailed {
		msg.Status = domain.NotificationQueued
	}
	return nil
}

func (m *MockNotificationRepository) FindStuckQueued(_ context.Context, cutoff time.Time, limit int) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []int64
	for id, msg := range m.messages {
		if msg.Status == domain.NotificationQueued && msg.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

func (m *MockNotificationRepository) FindRetryableFailed(_ context.Context, maxAttempts, limit int) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []int64
	for id, msg := range m.messages {
		if msg.Status == domain.NotificationFailed && msg.Attempts < maxAttempts {
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

func (m *MockNotificationRepository) CountDeadFailed(_ context.Context, maxAttempts int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, msg := range m.messages {
		if msg.Status == domain.NotificationFailed && msg.Attempts >= maxAttempts {
			n++
		}
	}
	return n, nil
}

var _ NotificationRepository = (*MockNotificationRepository)(nil)
