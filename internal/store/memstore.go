package store

import (
	"context"
	"maps"
	"sync"

	"github.com/heysubinoy/pyazkv/pkg/kv"
)

// MemStore is an in-memory implementation of the kv.Store interface.
// It uses a map protected by a RWMutex: reads run concurrently,
// Put and Delete are serialized.
type MemStore[V any] struct {
	mu   sync.RWMutex
	data map[string]V
}

// Compile-time check to ensure MemStore implements kv.Store.
var _ kv.Store[string] = (*MemStore[string])(nil)

// NewMemStore creates and returns a new, empty MemStore instance.
func NewMemStore[V any]() *MemStore[V] {
	return &MemStore[V]{
		data: make(map[string]V),
	}
}

// Get retrieves a value by key from the store.
// Returns the value and true if found, the zero value and false otherwise.
// Never fails.
func (s *MemStore[V]) Get(_ context.Context, key string) (V, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok, nil
}

// Put stores a key-value pair, retaining value.
// Always returns nil for in-memory operations.
func (s *MemStore[V]) Put(_ context.Context, key string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Delete removes a key from the store.
// Always returns nil, even if the key doesn't exist.
func (s *MemStore[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Len returns the number of keys held.
func (s *MemStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Snapshot returns a copy of the current contents.
func (s *MemStore[V]) Snapshot() map[string]V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.data)
}

// Replace swaps the contents for data. Used when restoring raft snapshots.
func (s *MemStore[V]) Replace(data map[string]V) {
	if data == nil {
		data = make(map[string]V)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = data
}
