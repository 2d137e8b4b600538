package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

type storedBlob struct {
	contentType string
	data        []byte
}

// MockBlobStore implements ports.BlobStore in memory. PutOrder records
// names in the order they were stored.
type MockBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]storedBlob

	PutOrder    []string
	DeleteCalls []string

	// FailPutAfter lets the first n Puts succeed before PutError applies.
	// Zero means PutError applies to every call.
	FailPutAfter int
	PutError     error
	OpenError    error
	DeleteError  error
}

var _ ports.BlobStore = (*MockBlobStore)(nil)

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{blobs: make(map[string]storedBlob)}
}

func (m *MockBlobStore) Put(ctx context.Context, name, contentType string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutError != nil && len(m.PutOrder) >= m.FailPutAfter {
		return m.PutError
	}
	m.PutOrder = append(m.PutOrder, name)
	m.blobs[name] = storedBlob{contentType: contentType, data: data}
	return nil
}

func (m *MockBlobStore) Open(ctx context.Context, name string) (*ports.Blob, error) {
	if m.OpenError != nil {
		return nil, m.OpenError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.blobs[name]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "image not found")
	}
	return &ports.Blob{
		Name:        name,
		ContentType: b.contentType,
		Size:        int64(len(b.data)),
		Content:     io.NopCloser(bytes.NewReader(b.data)),
	}, nil
}

func (m *MockBlobStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, name)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.blobs, name)
	return nil
}

func (m *MockBlobStore) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[name]
	return ok
}

func (m *MockBlobStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
