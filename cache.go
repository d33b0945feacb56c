// Package cache provides in-process key/value caches with interchangeable
// eviction policies: LRU (least recently used) and LFU (least frequently used,
// with frequency aging).
//
// Callers program against [Policy]; [New] builds a single engine and
// [NewShardedCache] spreads keys over several independent engines.
package cache

import (
	"fmt"

	"github.com/krisalay/policycache/eviction"
)

/*
Policy defines the PUBLIC API every cache in this module implements.
The eviction strategy, the index and the locking are hidden behind it.
*/
type Policy[K comparable, V any] interface {

	/*
		Put stores a key-value pair.

		BEHAVIOR:
		---------
		- Updates the value if the key is already present
		- Evicts one entry first if the cache is full and the key is new
		- Does nothing when the capacity is zero
	*/
	Put(key K, value V)

	/*
		Get retrieves the value associated with the given key.

		A missing key is a normal outcome: the zero value and false are
		returned and the cache state is not changed.
	*/
	Get(key K) (V, bool)

	// Remove deletes a key. Removing a missing key is a no-op.
	Remove(key K)

	// Len returns the number of resident entries.
	Len() int

	// Capacity returns the maximum number of resident entries.
	Capacity() int

	// Clear removes every entry.
	Clear()
}

// PolicyType re-exports the eviction strategy identifiers.
type PolicyType = eviction.PolicyType

const (
	LRU = eviction.LRUPolicy
	LFU = eviction.LFUPolicy
)

// ErrUnknownPolicy is returned by New for an unsupported PolicyType.
var ErrUnknownPolicy = eviction.ErrUnknownPolicy

// New builds one engine of the given type.
func New[K comparable, V any](t PolicyType, capacity int, opts ...eviction.Option) (Policy[K, V], error) {
	switch t {
	case LRU:
		return eviction.NewLRU[K, V](capacity, opts...), nil
	case LFU:
		return eviction.NewLFU[K, V](capacity, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, t)
	}
}

var (
	_ Policy[string, any] = (*eviction.LRU[string, any])(nil)
	_ Policy[string, any] = (*eviction.LFU[string, any])(nil)
	_ Policy[string, any] = (*ShardedCache[string, any])(nil)
)
