package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the number of packages kept by NewLRU when size <= 0
const DefaultSize = 64

// LRU is a bounded store that evicts the least recently scanned package.
// The underlying cache is internally locked.
type LRU[V any] struct {
	entries *lru.Cache[string, Entry[V]]
}

// NewLRU creates a bounded store
func NewLRU[V any](size int) (*LRU[V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, Entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &LRU[V]{entries: entries}, nil
}

// Get retrieves an entry by key
func (l *LRU[V]) Get(key string) (Entry[V], bool) {
	return l.entries.Get(key)
}

// Set replaces the entry for key
func (l *LRU[V]) Set(key string, value V, fingerprint string) {
	l.entries.Add(key, Entry[V]{
		Value:       value,
		Fingerprint: fingerprint,
		CachedAt:    time.Now(),
	})
}

// Invalidate removes an entry
func (l *LRU[V]) Invalidate(key string) {
	l.entries.Remove(key)
}

// InvalidateAll clears the store
func (l *LRU[V]) InvalidateAll() {
	l.entries.Purge()
}

// Len returns the number of entries
func (l *LRU[V]) Len() int {
	return l.entries.Len()
}
