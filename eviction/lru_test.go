package eviction_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisalay/policycache/eviction"
)

// --- LRU: basic operations ---

func TestLRU_PutGet(t *testing.T) {
	t.Parallel()

	t.Run("returns stored values", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, string](3)
		c.Put(1, "one")
		c.Put(2, "two")

		v, ok := c.Get(1)
		require.True(t, ok)
		require.Equal(t, "one", v)

		v, ok = c.Get(2)
		require.True(t, ok)
		require.Equal(t, "two", v)
	})

	t.Run("miss returns zero value", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, string](3)
		v, ok := c.Get(999)
		require.False(t, ok)
		require.Empty(t, v)
		require.Empty(t, c.Value(999))
	})

	t.Run("update replaces value without growing", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, string](3)
		c.Put(1, "one")
		c.Put(1, "updated_one")

		require.Equal(t, "updated_one", c.Value(1))
		require.Equal(t, 1, c.Len())
	})

	t.Run("remove deletes only that key", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, string](3)
		c.Put(1, "one")
		c.Put(2, "two")
		c.Remove(1)
		c.Remove(42)

		_, ok := c.Get(1)
		require.False(t, ok)
		_, ok = c.Get(2)
		require.True(t, ok)
		require.Equal(t, 1, c.Len())
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, string](3)
		c.Put(1, "one")
		c.Put(2, "two")
		c.Clear()

		require.Zero(t, c.Len())
		_, ok := c.Get(1)
		require.False(t, ok)

		c.Put(3, "three")
		require.Equal(t, "three", c.Value(3))
	})
}

// --- LRU: eviction ---

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	t.Run("evicts least recently put", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, string](3)
		c.Put(1, "one")
		c.Put(2, "two")
		c.Put(3, "three")
		c.Put(4, "four")

		_, ok := c.Get(1)
		require.False(t, ok, "1 should have been evicted")
		require.Equal(t, "two", c.Value(2))
		require.Equal(t, "three", c.Value(3))
		require.Equal(t, "four", c.Value(4))
	})

	t.Run("get refreshes recency", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, string](3)
		c.Put(1, "one")
		c.Put(2, "two")
		c.Put(3, "three")
		_, _ = c.Get(1)
		c.Put(4, "four")

		_, ok := c.Get(2)
		require.False(t, ok, "2 should have been evicted")
		for _, k := range []int{1, 3, 4} {
			_, ok := c.Get(k)
			require.True(t, ok, "key %d should remain", k)
		}
	})

	t.Run("put update refreshes recency", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[string, int](3)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)
		c.Put("a", 10)
		c.Put("d", 4)

		require.Equal(t, []string{"c", "a", "d"}, c.Keys())
	})

	t.Run("miss does not change order", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[string, int](2)
		c.Put("a", 1)
		c.Put("b", 2)
		before := c.Keys()

		_, _ = c.Get("zzz")
		require.Equal(t, before, c.Keys())
	})

	t.Run("callback receives evicted entry", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[string, int](2)
		evicted := map[string]int{}
		c.SetEvictCallback(func(k string, v int) { evicted[k] = v })

		c.Put("a", 1)
		c.Put("b", 2)
		c.Remove("b") // explicit removal is not an eviction
		c.Put("b", 2)
		c.Put("c", 3)

		require.Equal(t, map[string]int{"a": 1}, evicted)
	})

	t.Run("capacity of 1", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[string, int](1)
		c.Put("a", 1)
		c.Put("b", 2)

		_, ok := c.Get("a")
		require.False(t, ok)
		require.Equal(t, 2, c.Value("b"))
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		t.Parallel()

		c := eviction.NewLRU[int, int](10)
		for i := range 1000 {
			c.Put(i, i)
			require.LessOrEqual(t, c.Len(), 10)
		}
		require.Equal(t, 10, c.Len())
	})

	t.Run("evicts oldest touch against a reference model", func(t *testing.T) {
		t.Parallel()

		const capacity = 5
		c := eviction.NewLRU[int, int](capacity)
		var order []int // least recent first
		touch := func(k int) {
			for i, v := range order {
				if v == k {
					order = append(order[:i], order[i+1:]...)
					break
				}
			}
			order = append(order, k)
		}

		for step := range 500 {
			k := (step*7 + step/3) % 13
			if step%3 == 0 {
				if _, ok := c.Get(k); ok {
					touch(k)
				}
				continue
			}
			c.Put(k, step)
			touch(k)
			if len(order) > capacity {
				order = order[1:]
			}
			require.Equal(t, order, c.Keys(), "step %d", step)
		}
	})
}

// --- LRU: degenerate capacity ---

func TestLRU_ZeroCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			t.Parallel()

			c := eviction.NewLRU[int, string](capacity)
			c.Put(1, "one")

			_, ok := c.Get(1)
			require.False(t, ok)
			require.Zero(t, c.Len())
			require.Equal(t, capacity, c.Capacity())
		})
	}
}

// --- LRU: concurrency ---

func TestLRU_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := eviction.NewLRU[int, string](64)
	var wg sync.WaitGroup

	for g := range 8 {
		wg.Go(func() {
			for i := range 500 {
				key := g*500 + i
				c.Put(key, fmt.Sprintf("thread_%d_value_%d", g, i))
				_, _ = c.Get(key)
				if i%10 == 0 {
					c.Remove(key - 5)
				}
			}
		})
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 64)
	c.Put(999_999, "test")
	require.Equal(t, "test", c.Value(999_999))
}
