// Package storage provides flat key-value blob stores. Values are read and
// written whole; there are no partial updates or transactions across keys.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Blobs is a key-value store of opaque byte blobs.
type Blobs interface {
	// Get returns the blob stored under key, or nil if there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Close releases the store's resources.
	Close() error
}

// Memory is an in-process Blobs implementation, mostly for tests.
type Memory struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	closed bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.blobs[key] = append([]byte(nil), value...)
	return nil
}

// Keys lists the stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.blobs))
	for k := range m.blobs {
		keys = append(keys, k)
	}
	return keys
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
