package lrucache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Invariant 8: LRU eviction order.
func TestStrongCache_LRUEvictionOrder(t *testing.T) {
	c := NewStrongCache[string, int](3)
	c.Put("k1", 1)
	c.Put("k2", 2)
	c.Put("k3", 3)

	_, ok := c.Get("k1") // promote k1 to most-recently-used
	require.True(t, ok)

	c.Put("k4", 4) // evicts k2, the new least-recently-used

	_, ok = c.Get("k1")
	require.True(t, ok)
	_, ok = c.Get("k2")
	require.False(t, ok)
	_, ok = c.Get("k3")
	require.True(t, ok)
	_, ok = c.Get("k4")
	require.True(t, ok)
}

// Invariant 9: expiry.
func TestStrongCache_Expiry(t *testing.T) {
	c := NewStrongCache[string, string](0)
	fakeNow := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return fakeNow }

	c.PutWithTimeout("k", "v", 10*time.Second)

	fakeNow = fakeNow.Add(5 * time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	fakeNow = fakeNow.Add(6 * time.Second)
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestStrongCache_SizeReapsExpired(t *testing.T) {
	c := NewStrongCache[string, int](0)
	fakeNow := time.Unix(0, 0)
	c.now = func() time.Time { return fakeNow }
	c.PutWithTimeout("a", 1, time.Second)
	c.Put("b", 2) // no expiration

	require.Equal(t, 2, c.Size())
	fakeNow = fakeNow.Add(2 * time.Second)
	require.Equal(t, 1, c.Size())
}

func TestStrongCache_SetCapacityEvictsOldestFirst(t *testing.T) {
	c := NewStrongCache[string, int](5)
	for i, k := range []string{"a", "b", "c", "d", "e"} {
		c.Put(k, i)
	}
	c.SetCapacity(2)
	require.Equal(t, 2, c.Size())
	_, ok := c.Get("d")
	require.True(t, ok)
	_, ok = c.Get("e")
	require.True(t, ok)
	_, ok = c.Get("a")
	require.False(t, ok)
}

func TestStrongCache_ForEachOrderAndClear(t *testing.T) {
	c := NewStrongCache[string, int](0)
	c.Put("a", 1)
	c.Put("b", 2)

	var seen []string
	c.ForEach(func(k string, v int) { seen = append(seen, k) })
	require.Equal(t, []string{"a", "b"}, seen)

	c.Clear()
	require.Equal(t, 0, c.Size())
}

func TestEvictableCache_NotifyPressure(t *testing.T) {
	c := NewEvictableCache[int, int](0)
	for i := 0; i < 10; i++ {
		c.Put(i, i*i)
	}
	evicted := c.NotifyPressure(0.5)
	require.Equal(t, 5, evicted)
	require.Equal(t, 5, c.Size())

	// the 5 most-recently-used (5..9) must still be present; the oldest
	// 5 (0..4) must be gone.
	for i := 0; i < 5; i++ {
		_, ok := c.Get(i)
		require.False(t, ok, "key %d should have been evicted", i)
	}
	for i := 5; i < 10; i++ {
		_, ok := c.Get(i)
		require.True(t, ok, "key %d should remain", i)
	}
}

func TestEvictableCache_RetentionMode(t *testing.T) {
	c := NewEvictableCache[string, string](10)
	require.Equal(t, RetentionEvictable, c.Retention())
}

// S6 - cache under pressure: after clearing half, size must report <= the
// configured capacity and every remaining Get must return a stored value
// or absent, never partial/dangling state.
func TestS6_CacheUnderPressure(t *testing.T) {
	const capacity = 1000
	c := NewEvictableCache[int, int](capacity)
	for i := 0; i < 2000; i++ {
		c.Put(i, i)
	}
	require.LessOrEqual(t, c.Size(), capacity)

	evicted := c.NotifyPressure(0.5)
	require.Greater(t, evicted, 0)
	require.LessOrEqual(t, c.Size(), capacity)

	for i := 0; i < 2000; i++ {
		v, ok := c.Get(i)
		if ok {
			require.Equal(t, i, v)
		}
	}
}
