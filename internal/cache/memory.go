package cache

import (
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
)

// RunMemo is an in-memory memo whose entries never expire on their own.
// It is created at run start and flushed when the run ends.
type RunMemo[V any] struct {
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRunMemo creates an empty per-run memo
func NewRunMemo[V any]() *RunMemo[V] {
	return &RunMemo[V]{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a value from the memo
func (m *RunMemo[V]) Get(key string) (V, bool) {
	if val, found := m.cache.Get(key); found {
		if v, ok := val.(V); ok {
			m.hits.Add(1)
			return v, true
		}
	}
	m.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores a value for the rest of the run
func (m *RunMemo[V]) Set(key string, value V) {
	m.cache.Set(key, value, gocache.NoExpiration)
}

// Len returns the number of memoized entries
func (m *RunMemo[V]) Len() int {
	return m.cache.ItemCount()
}

// Flush drops every entry
func (m *RunMemo[V]) Flush() {
	m.cache.Flush()
}

// Stats returns hit and miss counts since creation
func (m *RunMemo[V]) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
