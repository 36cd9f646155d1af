package blobstore

import (
	"bytes"
	"context"
	"io"
	"slices"
	"sync"
)

// Compile-time check.
var _ Store = (*Memory)(nil)

// Memory implements Store in memory. It is safe for concurrent use and is
// the store of choice for tests; SetPutError injects persistence failures.
type Memory struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	putErr error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// SetPutError makes every subsequent Put fail with err. Pass nil to heal.
func (m *Memory) SetPutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// Open implements Store.
func (m *Memory) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(slices.Clone(data))), nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return m.putErr
	}
	m.blobs[name] = slices.Clone(data)
	return nil
}

// Len returns the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
