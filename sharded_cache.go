package cache

import (
	"context"
	"errors"

	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/shard"
	"github.com/krisalay/policycache/types"
)

// ErrLoad wraps errors returned by a Loader in GetOrLoad.
var ErrLoad = errors.New("cache: load failed")

/*
ShardedCache spreads keys over several independent engines.

Each shard is a complete LRU or LFU engine with its own lock, index and
ordering; shards share nothing. Eviction decisions are therefore per shard:
the cache as a whole is only approximately LRU/LFU, in exchange for callers on
different shards never contending on the same lock.
*/
type ShardedCache[K comparable, V any] struct {
	// shards are the actual storage units. Each shard is an independent engine.
	shards []Policy[K, V]

	// selector decides which shard a key should go to.
	selector shard.Selector[K]

	// capacity is the configured total. Shard capacities add up to exactly this.
	capacity int

	// loads prevents multiple goroutines from loading the same key simultaneously.
	loads LoadGroup[K]
}

/*
NewShardedCache creates a cache of the given total capacity split over shards
engines of type t.

The shard count is clamped to [1, capacity] so that no shard is left with
capacity zero. The first capacity%shards shards hold one entry more than the
others.
*/
func NewShardedCache[K comparable, V any](
	shards int,
	capacity int,
	t PolicyType,
	opts ...eviction.Option,
) (*ShardedCache[K, V], error) {
	shards = max(1, min(shards, capacity))

	s := make([]Policy[K, V], shards)
	for i := range s {
		// Each shard gets its own engine instance.
		p, err := New[K, V](t, shardCapacity(capacity, shards, i), opts...)
		if err != nil {
			return nil, err
		}
		s[i] = p
	}

	return &ShardedCache[K, V]{
		shards:   s,
		selector: shard.NewHashSelector[K](),
		capacity: capacity,
	}, nil
}

// shardCapacity is the share of capacity held by shard i of n.
func shardCapacity(capacity, n, i int) int {
	if capacity <= 0 {
		return 0
	}
	c := capacity / n
	if i < capacity%n {
		c++
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) Policy[K, V] {
	return c.shards[c.selector.Select(key, len(c.shards))]
}

// Put stores a value in the key's shard.
func (c *ShardedCache[K, V]) Put(key K, value V) {
	c.shardFor(key).Put(key, value)
}

// Get retrieves a value from the key's shard.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	return c.shardFor(key).Get(key)
}

// Remove deletes a key from its shard.
func (c *ShardedCache[K, V]) Remove(key K) {
	c.shardFor(key).Remove(key)
}

// Len sums the resident entries of all shards. Shards are read one after the
// other, so under concurrent writes the result is approximate.
func (c *ShardedCache[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.Len()
	}
	return n
}

// Capacity returns the configured total capacity.
func (c *ShardedCache[K, V]) Capacity() int { return c.capacity }

// Clear empties every shard.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
}

// Shards returns the number of shards.
func (c *ShardedCache[K, V]) Shards() int { return len(c.shards) }

/*
GetOrLoad returns the cached value for key, or loads, stores and returns it.

The in-flight load is shared per key:
- If 100 goroutines request the same missing key,
  only ONE of them calls the loader.
- Others wait for the result.

Loader errors are returned joined with ErrLoad and nothing is cached.
*/
func (c *ShardedCache[K, V]) GetOrLoad(ctx context.Context, key K, loader types.Loader[K, V]) (V, error) {
	return getOrLoad(ctx, c, &c.loads, key, loader)
}

// GetOrLoad is the read-through helper for any Policy. Concurrent misses on
// the same key are deduplicated per group; pass a group owned by the caller,
// one per cache instance.
func GetOrLoad[K comparable, V any](
	ctx context.Context,
	c Policy[K, V],
	group *LoadGroup[K],
	key K,
	loader types.Loader[K, V],
) (V, error) {
	return getOrLoad(ctx, c, group, key, loader)
}

func getOrLoad[K comparable, V any](
	ctx context.Context,
	c Policy[K, V],
	group *LoadGroup[K],
	key K,
	loader types.Loader[K, V],
) (V, error) {
	// Fast path.
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := group.do(key, func() (any, error) {
		val, err := loader.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		c.Put(key, val)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, errors.Join(ErrLoad, err)
	}
	// A nil interface value loads as the zero V.
	val, _ := v.(V)
	return val, nil
}
