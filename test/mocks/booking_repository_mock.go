package mocks

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

// MockBookingRepository implements ports.BookingRepository in memory.
// UpdateStatus is a compare-and-set on the stored status.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]domain.Booking

	CreateCalls       []domain.Booking
	UpdateStatusCalls []domain.Booking

	CreateError       error
	FindByIDError     error
	ListError         error
	UpdateStatusError error
}

var _ ports.BookingRepository = (*MockBookingRepository)(nil)

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{bookings: make(map[string]domain.Booking)}
}

func (m *MockBookingRepository) Seed(bookings ...domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
}

func (m *MockBookingRepository) Get(id string) (domain.Booking, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	return b, ok
}

// SetStatus overwrites a stored status, simulating a concurrent writer.
func (m *MockBookingRepository) SetStatus(id string, status domain.BookingStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		b.Status = status
		m.bookings[id] = b
	}
}

func (m *MockBookingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, booking)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "booking not found")
	}
	return &b, nil
}

func (m *MockBookingRepository) FindByRenter(ctx context.Context, renterID string) ([]domain.Booking, error) {
	return m.filter(func(b domain.Booking) bool { return b.RenterID == renterID }), nil
}

func (m *MockBookingRepository) FindByListings(ctx context.Context, listingIDs []string) ([]domain.Booking, error) {
	return m.filter(func(b domain.Booking) bool { return slices.Contains(listingIDs, b.ListingID) }), nil
}

func (m *MockBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.filter(func(domain.Booking) bool { return true }), nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, booking domain.Booking, from domain.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateStatusCalls = append(m.UpdateStatusCalls, booking)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	stored, ok := m.bookings[booking.ID]
	if !ok || stored.Status != from {
		return domain.WrapError(domain.KindInvalidTransition, domain.ErrInvalidTransition,
			"booking is no longer %s", from)
	}
	stored.Status = booking.Status
	stored.UpdatedAt = booking.UpdatedAt
	m.bookings[booking.ID] = stored
	return nil
}

func (m *MockBookingRepository) filter(keep func(domain.Booking) bool) []domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Booking{}
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.Booking) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
