package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Store[int] = (*Memory[int])(nil)
	_ Store[int] = (*LRU[int])(nil)
)

func stores(t *testing.T) map[string]Store[string] {
	bounded, err := NewLRU[string](2)
	require.NoError(t, err)
	return map[string]Store[string]{
		"memory": NewMemory[string](),
		"lru":    bounded,
	}
}

func TestStoreSetGetInvalidate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := store.Get("algorithms")
			assert.False(t, ok)

			store.Set("algorithms", "v1", "f1")
			entry, ok := store.Get("algorithms")
			require.True(t, ok)
			assert.Equal(t, "v1", entry.Value)
			assert.Equal(t, "f1", entry.Fingerprint)
			assert.False(t, entry.CachedAt.IsZero())

			store.Set("algorithms", "v2", "f2")
			entry, _ = store.Get("algorithms")
			assert.Equal(t, "v2", entry.Value)

			store.Set("plots", "p", "f3")
			assert.Equal(t, 2, store.Len())

			store.Invalidate("algorithms")
			_, ok = store.Get("algorithms")
			assert.False(t, ok)

			store.InvalidateAll()
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestLRUEvictsOldest(t *testing.T) {
	store, err := NewLRU[int](2)
	require.NoError(t, err)

	store.Set("a", 1, "")
	store.Set("b", 2, "")
	store.Set("c", 3, "")

	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestNewLRUDefaultSize(t *testing.T) {
	store, err := NewLRU[int](0)
	require.NoError(t, err)
	for i := 0; i < DefaultSize+5; i++ {
		store.Set(fmt.Sprint(i), i, "")
	}
	assert.Equal(t, DefaultSize, store.Len())
}

func TestConcurrentAccess(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func(i int) {
					defer wg.Done()
					store.Set("k", fmt.Sprint(i), "")
				}(i)
				go func() {
					defer wg.Done()
					store.Get("k")
				}()
			}
			wg.Wait()

			_, ok := store.Get("k")
			assert.True(t, ok)
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([2]string{"a.go", "x"}, [2]string{"b.go", "y"})
	b := Fingerprint([2]string{"a.go", "x"}, [2]string{"b.go", "y"})
	c := Fingerprint([2]string{"a.go", "xb.go"}, [2]string{"", "y"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
