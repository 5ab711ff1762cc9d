// Package cache holds immutable scan snapshots keyed by package identity.
// Values are replaced wholesale and never mutated, so readers observe
// either the previous complete value or the next one.
package cache

import "time"

// Entry is a cached value with its bookkeeping
type Entry[V any] struct {
	Value V
	// Fingerprint identifies the inputs the value was built from.
	Fingerprint string
	CachedAt    time.Time
}

// Store is the snapshot store injected into the scanner.
type Store[V any] interface {
	Get(key string) (Entry[V], bool)
	Set(key string, value V, fingerprint string)
	Invalidate(key string)
	InvalidateAll()
	Len() int
}
