package lrucache

import (
	"math"
	"sync"
	"time"
)

// EvictableCache behaves like StrongCache but additionally responds to an
// external memory-pressure signal by dropping least-recently-used entries
// on demand. The source design relies on the JVM's SoftReference and GC
// to reclaim values automatically under pressure; Go has no equivalent
// runtime hook, so per spec §9 this implements the documented fallback:
// a size-bounded cache plus an explicit NotifyPressure call the host
// invokes when it observes memory pressure (e.g. from a cgroup memory
// controller or a runtime/debug.ReadMemStats threshold).
type EvictableCache[K comparable, V any] struct {
	mu    sync.Mutex
	inner *StrongCache[K, V]
}

// NewEvictableCache returns an EvictableCache bounded to capacity entries
// (0 = unbounded).
func NewEvictableCache[K comparable, V any](capacity int) *EvictableCache[K, V] {
	return &EvictableCache[K, V]{inner: NewStrongCache[K, V](capacity)}
}

func (c *EvictableCache[K, V]) Put(k K, v V)                               { c.inner.Put(k, v) }
func (c *EvictableCache[K, V]) PutWithTimeout(k K, v V, d time.Duration)   { c.inner.PutWithTimeout(k, v, d) }
func (c *EvictableCache[K, V]) Get(k K) (V, bool)                          { return c.inner.Get(k) }
func (c *EvictableCache[K, V]) Remove(k K)                                 { c.inner.Remove(k) }
func (c *EvictableCache[K, V]) Size() int                                  { return c.inner.Size() }
func (c *EvictableCache[K, V]) Clear()                                     { c.inner.Clear() }
func (c *EvictableCache[K, V]) Keys() []K                                  { return c.inner.Keys() }
func (c *EvictableCache[K, V]) SetCapacity(capacity int)                   { c.inner.SetCapacity(capacity) }
func (c *EvictableCache[K, V]) SetTimeout(d time.Duration)                 { c.inner.SetTimeout(d) }
func (c *EvictableCache[K, V]) ForEach(visitor func(k K, v V))             { c.inner.ForEach(visitor) }

// NotifyPressure evicts the least-recently-used ceil(fraction*Size())
// entries immediately. fraction is clamped to [0,1]. This is the
// "runtime memory system may reclaim values under pressure" behavior
// spec §4.2 describes, made explicit rather than GC-driven.
func (c *EvictableCache[K, V]) NotifyPressure(fraction float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	keys := c.inner.Keys() // least-recently-used first
	n := int(math.Ceil(fraction * float64(len(keys))))
	for i := 0; i < n && i < len(keys); i++ {
		c.inner.Remove(keys[i])
	}
	return n
}

// Retention reports this cache's retention mode, for callers that branch
// on CacheEntry.retention generically.
func (c *EvictableCache[K, V]) Retention() Retention { return RetentionEvictable }
