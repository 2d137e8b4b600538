package mocks

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

// MockListingRepository implements ports.ListingRepository in memory,
// applying the same filters and newest-first ordering as Mongo.
type MockListingRepository struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing

	CreateCalls []domain.Listing
	UpdateCalls []domain.Listing
	DeleteCalls []string

	CreateError        error
	FindByIDError      error
	FindAvailableError error
	ListError          error
	UpdateError        error
	DeleteError        error
}

var _ ports.ListingRepository = (*MockListingRepository)(nil)

func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{listings: make(map[string]domain.Listing)}
}

func (m *MockListingRepository) Seed(listings ...domain.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range listings {
		m.listings[l.ID] = l
	}
}

func (m *MockListingRepository) Get(id string) (domain.Listing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listings[id]
	return l, ok
}

func (m *MockListingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listings)
}

func (m *MockListingRepository) Create(ctx context.Context, listing domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, listing)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.listings[listing.ID] = listing
	return nil
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.listings[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "listing not found")
	}
	return &l, nil
}

func (m *MockListingRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Listing, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	return m.filter(func(l domain.Listing) bool { return slices.Contains(ids, l.ID) }), nil
}

func (m *MockListingRepository) FindAvailable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	if m.FindAvailableError != nil {
		return nil, m.FindAvailableError
	}
	out := m.filter(func(l domain.Listing) bool {
		switch {
		case !l.IsAvailable:
			return false
		case f.PropertyType != "" && !strings.EqualFold(l.PropertyType, f.PropertyType):
			return false
		case f.AdType != "" && l.AdType != f.AdType:
			return false
		case f.MinRent != nil && l.RentAmount < *f.MinRent:
			return false
		case f.MaxRent != nil && l.RentAmount > *f.MaxRent:
			return false
		}
		return true
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []domain.Listing{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MockListingRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	return m.filter(func(l domain.Listing) bool { return l.OwnerID == ownerID }), nil
}

func (m *MockListingRepository) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	for _, l := range m.filter(func(l domain.Listing) bool { return l.OwnerID == ownerID }) {
		ids = append(ids, l.ID)
	}
	return ids, nil
}

func (m *MockListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.filter(func(domain.Listing) bool { return true }), nil
}

func (m *MockListingRepository) Update(ctx context.Context, listing domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, listing)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	stored, ok := m.listings[listing.ID]
	if !ok {
		return domain.NewError(domain.KindNotFound, "listing not found")
	}
	// Owner and creation time are never written after insert.
	listing.OwnerID = stored.OwnerID
	listing.CreatedAt = stored.CreatedAt
	m.listings[listing.ID] = listing
	return nil
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.listings[id]; !ok {
		return domain.NewError(domain.KindNotFound, "listing not found")
	}
	delete(m.listings, id)
	return nil
}

func (m *MockListingRepository) filter(keep func(domain.Listing) bool) []domain.Listing {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Listing{}
	for _, l := range m.listings {
		if keep(l) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b domain.Listing) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
