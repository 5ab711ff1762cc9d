package cache

import (
	"sync"
	"time"
)

// Memory is an unbounded store guarded by a read-write mutex.
type Memory[V any] struct {
	entries map[string]Entry[V]
	mu      sync.RWMutex
}

// NewMemory creates an empty unbounded store
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		entries: make(map[string]Entry[V]),
	}
}

// Get retrieves an entry by key
func (m *Memory[V]) Get(key string) (Entry[V], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	return entry, exists
}

// Set replaces the entry for key
func (m *Memory[V]) Set(key string, value V, fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry[V]{
		Value:       value,
		Fingerprint: fingerprint,
		CachedAt:    time.Now(),
	}
}

// Invalidate removes an entry
func (m *Memory[V]) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// InvalidateAll clears the store
func (m *Memory[V]) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]Entry[V])
}

// Len returns the number of entries
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
