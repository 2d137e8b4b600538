package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

// MockBookingEventPublisher implements ports.BookingEventPublisher so the
// relay can be tested without RabbitMQ.
type MockBookingEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents  []domain.BookingStatusEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.BookingEventPublisher = (*MockBookingEventPublisher)(nil)

func NewMockBookingEventPublisher() *MockBookingEventPublisher {
	return &MockBookingEventPublisher{PublishedEvents: make([]domain.BookingStatusEvent, 0)}
}

func (m *MockBookingEventPublisher) PublishBookingStatusChanged(ctx context.Context, evt domain.BookingStatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

func (m *MockBookingEventPublisher) GetPublishedEvents() []domain.BookingStatusEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.BookingStatusEvent, len(m.PublishedEvents))
	copy(out, m.PublishedEvents)
	return out
}

func (m *MockBookingEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedEvents = make([]domain.BookingStatusEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}
