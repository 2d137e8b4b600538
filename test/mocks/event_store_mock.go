package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

// MockBookingEventStore implements ports.BookingEventStore as an
// append-only slice.
type MockBookingEventStore struct {
	mu     sync.RWMutex
	events []domain.BookingStatusEvent

	AppendCallCount int

	AppendError  error
	HistoryError error
}

var _ ports.BookingEventStore = (*MockBookingEventStore)(nil)

func NewMockBookingEventStore() *MockBookingEventStore {
	return &MockBookingEventStore{}
}

func (m *MockBookingEventStore) Append(ctx context.Context, evt domain.BookingStatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCallCount++
	if m.AppendError != nil {
		return m.AppendError
	}
	m.events = append(m.events, evt)
	return nil
}

func (m *MockBookingEventStore) History(ctx context.Context, bookingID string) ([]domain.BookingStatusEvent, error) {
	if m.HistoryError != nil {
		return nil, m.HistoryError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.BookingStatusEvent{}
	for _, e := range m.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Events returns every appended event in order.
func (m *MockBookingEventStore) Events() []domain.BookingStatusEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.BookingStatusEvent, len(m.events))
	copy(out, m.events)
	return out
}
