package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

// MockOutboxRepository is a hand-written, in-memory implementation of
// OutboxRepository used in unit tests. Messages built during PublishBatch
// are stored in an optional sink so relay tests can inspect them.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent
	nextID int64

	// Sink receives the messages PublishBatch inserts. Optional.
	Sink *MockNotificationRepository

	// Optional error override — set in tests to simulate a failed batch.
	PublishErr error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Append seeds an unpublished event.
func (m *MockOutboxRepository) Append(evt *domain.OutboxEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *evt
	m.events = append(m.events, &clone)
}

func (m *MockOutboxRepository) PublishBatch(_ context.Context, limit int, publishedAt time.Time, build MessageBuilder) ([]int64, int, error) {
	if m.PublishErr != nil {
		return nil, 0, m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []*domain.OutboxEvent
	for _, evt := range m.events {
		if evt.PublishedAt == nil {
			pending = append(pending, evt)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}

	var ids []int64
	for _, evt := range pending {
		if msg := build(evt); msg != nil {
			m.nextID++
			id := m.nextID
			if m.Sink != nil {
				id = m.Sink.Add(msg)
			}
			ids = append(ids, id)
		}
		at := publishedAt
		evt.PublishedAt = &at
	}
	return ids, len(pending), nil
}

func (m *MockOutboxRepository) CountUnpublished(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, evt := range m.events {
		if evt.PublishedAt == nil {
			n++
		}
	}
	return n, nil
}

// Events returns a snapshot of all events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.OutboxEvent, 0, len(m.events))
	for _, evt := range m.events {
		clone := *evt
		result = append(result, &clone)
	}
	return result
}

var _ OutboxRepository = (*MockOutboxRepository)(nil)
