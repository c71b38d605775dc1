package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process BlobStore used by tests and ephemeral setups.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	// PutErr, when set, is returned by every Put.
	PutErr error
	puts   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data under key.
func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	m.blobs[key] = append([]byte(nil), data...)
	m.puts++
	return nil
}

// Puts returns the number of successful writes.
func (m *MemoryStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
