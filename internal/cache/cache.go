// Package cache provides the bounded response cache: strict LRU eviction,
// lazy TTL expiry, and lifetime hit/miss counters. One instance exists per
// request mode; instances are constructed at boot and injected into the
// orchestrator, never reached as ambient state.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Stats is a point-in-time snapshot of a cache's counters. Hits and Misses
// are lifetime values: monotonic within the process, unaffected by Clear.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	CurrentSize int    `json:"current_size"`
	Capacity    int    `json:"capacity"`
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe TTL+LRU cache. The LRU order book is a simplelru
// list guarded by a single mutex; every operation under the lock is O(1) and
// performs no I/O. Values are stored by value so callers never alias the
// cached copy.
type Cache[V any] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[string, entry[V]]
	capacity int
	ttl      time.Duration
	hits     uint64
	misses   uint64

	// now is swappable so tests can drive expiry deterministically.
	now func() time.Time
}

// New constructs a cache with the given capacity and default TTL.
func New[V any](capacity int, ttl time.Duration) (*Cache[V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("cache capacity must be at least 1, got %d", capacity)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	lru, err := simplelru.NewLRU[string, entry[V]](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lru: %w", err)
	}
	return &Cache[V]{
		lru:      lru,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Get returns the value for key when present and unexpired, updating its
// recency. An expired entry is removed and reported as a miss, never served.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	if c.now().After(ent.expiresAt) {
		c.lru.Remove(key)
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return ent.value, true
}

// Put stores value under key with the cache's default TTL, evicting the
// least-recently-used entry when at capacity.
func (c *Cache[V]) Put(key string, value V) {
	c.PutTTL(key, value, c.ttl)
}

// PutTTL stores value under key with an explicit TTL.
func (c *Cache[V]) PutTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, entry[V]{value: value, expiresAt: c.now().Add(ttl)})
}

// Clear drops every entry and resets size to zero. Lifetime hit/miss
// counters are kept: Clear invalidates state, it does not reset statistics.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
}

// Len reports the current number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Stats snapshots the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		CurrentSize: c.lru.Len(),
		Capacity:    c.capacity,
	}
}
