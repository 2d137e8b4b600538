// Package mocks provides in-memory implementations of the port interfaces.
// Services depend on ports, so tests inject these instead of Mongo,
// Postgres, GridFS or RabbitMQ.
package mocks

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

// MockIdentityRepository implements ports.IdentityRepository in memory.
// It enforces email uniqueness the way the unique index does.
type MockIdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity

	// Call tracking for verification
	CreateCalls      []domain.Identity
	FindByEmailCalls []string
	ApproveCalls     []string
	DeleteCalls      []string

	// Error injection for testing error scenarios
	CreateError      error
	FindByIDError    error
	FindByEmailError error
	ListError        error
	ApproveError     error
	DeleteError      error
}

var _ ports.IdentityRepository = (*MockIdentityRepository)(nil)

func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{identities: make(map[string]domain.Identity)}
}

// Seed stores identities directly, bypassing uniqueness checks.
func (m *MockIdentityRepository) Seed(identities ...domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range identities {
		m.identities[i.ID] = i
	}
}

// Get returns the stored identity for assertions.
func (m *MockIdentityRepository) Get(id string) (domain.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.identities[id]
	return i, ok
}

func (m *MockIdentityRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities)
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, identity)
	if m.CreateError != nil {
		return m.CreateError
	}
	for _, existing := range m.identities {
		if existing.Email == identity.Email {
			return domain.ErrDuplicateEmail
		}
	}
	m.identities[identity.ID] = identity
	return nil
}

func (m *MockIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.identities[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "identity not found")
	}
	return &i, nil
}

func (m *MockIdentityRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Identity, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Identity{}
	for _, id := range ids {
		if i, ok := m.identities[id]; ok {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *MockIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	m.FindByEmailCalls = append(m.FindByEmailCalls, email)
	m.mu.Unlock()

	if m.FindByEmailError != nil {
		return nil, m.FindByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, i := range m.identities {
		if i.Email == email {
			return &i, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "identity not found")
}

func (m *MockIdentityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Identity, 0, len(m.identities))
	for _, i := range m.identities {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b domain.Identity) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Approve only matches Owners, like the filtered update in Mongo.
func (m *MockIdentityRepository) Approve(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ApproveCalls = append(m.ApproveCalls, id)
	if m.ApproveError != nil {
		return m.ApproveError
	}
	i, ok := m.identities[id]
	if !ok || i.Role != domain.RoleOwner {
		return domain.NewError(domain.KindNotFound, "owner not found")
	}
	i.IsApproved = true
	m.identities[id] = i
	return nil
}

// Delete never removes an Admin.
func (m *MockIdentityRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	i, ok := m.identities[id]
	if !ok || i.Role == domain.RoleAdmin {
		return domain.NewError(domain.KindNotFound, "identity not found")
	}
	delete(m.identities, id)
	return nil
}
