package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements the subset of *redis.Client used by the
// revocation cache. Expirations are recorded, not enforced in real time,
// so tests can assert on them.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]mockRedisValue

	SetCalls    int
	ExistsCalls int

	// Error injection
	SetError    error
	ExistsError error
}

type mockRedisValue struct {
	value      string
	expiration time.Duration
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{data: make(map[string]mockRedisValue)}
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls++
	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}
	m.data[key] = mockRedisValue{value: fmt.Sprint(value), expiration: expiration}
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExistsCalls++
	cmd := redis.NewIntCmd(ctx)
	if m.ExistsError != nil {
		cmd.SetErr(m.ExistsError)
		return cmd
	}
	var count int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			count++
		}
	}
	cmd.SetVal(count)
	return cmd
}

// Expiration returns the TTL a key was stored with.
func (m *MockRedisClient) Expiration(key string) (time.Duration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v.expiration, ok
}

func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

func (m *MockRedisClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]mockRedisValue)
	m.SetCalls, m.ExistsCalls = 0, 0
	m.SetError, m.ExistsError = nil, nil
}
