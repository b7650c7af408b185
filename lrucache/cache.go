// Package lrucache implements the bounded, optionally time-limited,
// concurrent cache the session layer relies on: a StrongCache that keeps
// every entry it holds alive, and an EvictableCache that additionally
// responds to an external memory-pressure signal (the Go equivalent of
// the original design's SoftReference-backed retention mode - see
// SPEC_FULL.md §7.2 and DESIGN.md for why no runtime-driven soft
// reference exists to lean on here).
package lrucache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Retention selects how aggressively a cache may drop entries under
// pressure, mirroring CacheEntry.retention in the spec's data model.
type Retention int

const (
	RetentionStrong Retention = iota
	RetentionEvictable
)

type entry[V any] struct {
	value      V
	expiresAt  time.Time // zero means no expiration
	hasExpires bool
}

// StrongCache is a bounded LRU map that never drops an entry except by
// capacity eviction, explicit removal, or expiration - it retains every
// value it holds for as long as the invariants allow.
type StrongCache[K comparable, V any] struct {
	mu       sync.Mutex
	cache    *lru.Cache[K, *entry[V]]
	capacity int
	timeout  time.Duration // 0 means no default timeout
	now      func() time.Time
}

// NewStrongCache returns a cache bounded to capacity entries (0 = unbounded,
// implemented as a very large capacity since golang-lru requires a positive
// size).
func NewStrongCache[K comparable, V any](capacity int) *StrongCache[K, V] {
	c := &StrongCache[K, V]{capacity: capacity, now: time.Now}
	c.cache = mustNewLRU[K, V](capacity)
	return c
}

func mustNewLRU[K comparable, V any](capacity int) *lru.Cache[K, *entry[V]] {
	size := capacity
	if size <= 0 {
		size = 1 << 20 // effectively unbounded for this process's purposes
	}
	c, err := lru.New[K, *entry[V]](size)
	if err != nil {
		// Only returns an error for size <= 0, which is excluded above.
		panic(err)
	}
	return c
}

// SetCapacity changes the bound, evicting oldest-accessed-first until the
// cache fits the new capacity (0 = unbounded).
func (c *StrongCache[K, V]) SetCapacity(capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	newCache := mustNewLRU[K, V](capacity)
	keys := c.cache.Keys() // oldest first
	start := 0
	if capacity > 0 && len(keys) > capacity {
		start = len(keys) - capacity
	}
	for _, k := range keys[start:] {
		if v, ok := c.cache.Peek(k); ok {
			newCache.Add(k, v)
		}
	}
	c.cache = newCache
}

// SetTimeout sets the default expiration applied to entries inserted
// without an explicit per-entry timeout. 0 disables the default.
func (c *StrongCache[K, V]) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// Put inserts or overwrites k with v, using the cache's default timeout.
func (c *StrongCache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(k, v, c.timeout)
}

// PutWithTimeout inserts or overwrites k with v, expiring after d
// (0 = never expires, regardless of the cache's default timeout).
func (c *StrongCache[K, V]) PutWithTimeout(k K, v V, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(k, v, d)
}

func (c *StrongCache[K, V]) putLocked(k K, v V, d time.Duration) {
	e := &entry[V]{value: v}
	if d > 0 {
		e.expiresAt = c.now().Add(d)
		e.hasExpires = true
	}
	c.cache.Add(k, e)
}

// Get returns the value for k and true, promoting it to most-recently-used,
// or the zero value and false if absent or expired. Expired entries
// encountered here are reaped immediately.
func (c *StrongCache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(e) {
		c.cache.Remove(k)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *StrongCache[K, V]) expired(e *entry[V]) bool {
	return e.hasExpires && c.now().After(e.expiresAt)
}

// Remove deletes k unconditionally.
func (c *StrongCache[K, V]) Remove(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(k)
}

// Size returns the number of live (non-expired) entries, reaping expired
// ones eagerly.
func (c *StrongCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reapLocked()
	return c.cache.Len()
}

// Keys returns the cache's keys, least-recently-used first, after
// reaping expired entries.
func (c *StrongCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reapLocked()
	return c.cache.Keys()
}

func (c *StrongCache[K, V]) reapLocked() {
	for _, k := range c.cache.Keys() {
		if e, ok := c.cache.Peek(k); ok && c.expired(e) {
			c.cache.Remove(k)
		}
	}
}

// Clear removes every entry.
func (c *StrongCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// ForEach calls visitor for every live entry, least-recently-used first,
// holding the cache's lock for the duration of the visit. visitor must
// not re-enter the cache.
func (c *StrongCache[K, V]) ForEach(visitor func(k K, v V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reapLocked()
	for _, k := range c.cache.Keys() {
		if e, ok := c.cache.Peek(k); ok {
			visitor(k, e.value)
		}
	}
}
