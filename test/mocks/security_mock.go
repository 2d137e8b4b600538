package mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const fakeDigestPrefix = "hashed:"

// FakeHasher is a reversible stand-in for bcrypt.
type FakeHasher struct {
	HashError   error
	VerifyError error
}

var _ ports.PasswordHasher = (*FakeHasher)(nil)

func (h *FakeHasher) Hash(plaintext string) (string, error) {
	if h.HashError != nil {
		return "", h.HashError
	}
	return fakeDigestPrefix + plaintext, nil
}

func (h *FakeHasher) Verify(plaintext, digest string) (bool, error) {
	if h.VerifyError != nil {
		return false, h.VerifyError
	}
	if !strings.HasPrefix(digest, fakeDigestPrefix) {
		return false, errors.New("malformed digest")
	}
	return digest == fakeDigestPrefix+plaintext, nil
}

// Digest returns what FakeHasher would store for plaintext.
func Digest(plaintext string) string { return fakeDigestPrefix + plaintext }

// FakeTokens issues opaque tokens and remembers their claims. Expiry is
// evaluated against Clock.
type FakeTokens struct {
	mu     sync.Mutex
	Clock  clock.Clock
	TTL    time.Duration
	issued map[string]ports.TokenClaims
	seq    int

	IssueError error
}

var _ ports.TokenIssuer = (*FakeTokens)(nil)

func NewFakeTokens(clk clock.Clock, ttl time.Duration) *FakeTokens {
	return &FakeTokens{Clock: clk, TTL: ttl, issued: make(map[string]ports.TokenClaims)}
}

func (t *FakeTokens) Issue(identityID string) (string, ports.TokenClaims, error) {
	if t.IssueError != nil {
		return "", ports.TokenClaims{}, t.IssueError
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	now := t.Clock.Now()
	claims := ports.TokenClaims{
		Subject:   identityID,
		TokenID:   fmt.Sprintf("jti-%d", t.seq),
		IssuedAt:  now,
		ExpiresAt: now.Add(t.TTL),
	}
	token := fmt.Sprintf("token-%d-%s", t.seq, identityID)
	t.issued[token] = claims
	return token, claims, nil
}

func (t *FakeTokens) Verify(token string) (ports.TokenClaims, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	claims, ok := t.issued[token]
	if !ok {
		return ports.TokenClaims{}, errors.New("token signature is invalid")
	}
	if !t.Clock.Now().Before(claims.ExpiresAt) {
		return ports.TokenClaims{}, errors.New("token is expired")
	}
	return claims, nil
}

// MockRevocations implements ports.TokenRevocations in memory.
type MockRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time

	RevokeError    error
	IsRevokedError error
}

var _ ports.TokenRevocations = (*MockRevocations)(nil)

func NewMockRevocations() *MockRevocations {
	return &MockRevocations{revoked: make(map[string]time.Time)}
}

func (m *MockRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if m.RevokeError != nil {
		return m.RevokeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	return nil
}

func (m *MockRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.IsRevokedError != nil {
		return false, m.IsRevokedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}
