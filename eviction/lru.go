// This file implements LRU eviction.

package eviction

import (
	"sync"

	"github.com/krisalay/policycache/types"
)

/*
LRU is a capacity-bounded cache that evicts the entry which has not been
touched for the longest time.

It keeps:
- index: key -> arena slot, for O(1) lookup
- order: a linked list over the arena, head = least recently used,
  tail = most recently used

Every public method holds mu for its whole duration.
*/
type LRU[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	index    map[K]int32
	arena    *arena[K, V]
	order    list

	metrics types.Metrics
	onEvict func(key K, value V)
}

// NewLRU creates an LRU engine holding at most capacity entries.
// A capacity of zero (or less) gives a cache that stores nothing.
func NewLRU[K comparable, V any](capacity int, opts ...Option) *LRU[K, V] {
	o := buildOptions(opts)
	return &LRU[K, V]{
		capacity: capacity,
		index:    make(map[K]int32, min(max(capacity, 0), 1024)),
		arena:    newArena[K, V](capacity),
		order:    newList(),
		metrics:  o.metrics,
	}
}

// SetEvictCallback registers fn to be called with every entry dropped to make
// room for a new one. It runs under the engine lock and must not call back
// into the cache.
func (l *LRU[K, V]) SetEvictCallback(fn func(key K, value V)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onEvict = fn
}

// Put inserts or updates key. Updating an existing key makes it the most
// recently used one. Inserting into a full cache evicts the least recently used
// entry first.
func (l *LRU[K, V]) Put(key K, value V) {
	if l.capacity <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.index[key]; ok {
		l.arena.at(i).value = value
		l.moveToBack(i)
		l.checkInvariants()
		return
	}

	if len(l.index) >= l.capacity {
		l.evictOldest()
	}

	i := l.arena.alloc(key, value)
	pushBack(l.arena, &l.order, i)
	l.index[key] = i
	l.checkInvariants()
}

// Get returns the value for key and marks it as most recently used.
// A miss returns the zero value and false and leaves the cache untouched.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[key]
	if !ok {
		l.metrics.Miss()
		var zero V
		return zero, false
	}

	l.metrics.Hit()
	l.moveToBack(i)
	l.checkInvariants()
	return l.arena.at(i).value, true
}

// Value is Get without the found flag: a miss yields the zero value.
func (l *LRU[K, V]) Value(key K) V {
	v, _ := l.Get(key)
	return v
}

// Remove deletes key if present.
func (l *LRU[K, V]) Remove(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.index[key]; ok {
		l.drop(i)
		l.checkInvariants()
	}
}

// Len returns the number of resident entries.
func (l *LRU[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.index)
}

// Capacity returns the configured maximum number of entries.
func (l *LRU[K, V]) Capacity() int { return l.capacity }

// Clear removes every entry without calling the evict callback.
func (l *LRU[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.index)
	l.arena.reset()
	l.order = newList()
}

// Keys returns resident keys from least to most recently used.
func (l *LRU[K, V]) Keys() []K {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]K, 0, len(l.index))
	for i := l.order.head; i != nilIdx; i = l.arena.at(i).next {
		keys = append(keys, l.arena.at(i).key)
	}
	return keys
}

// moveToBack marks i as most recently used.
func (l *LRU[K, V]) moveToBack(i int32) {
	if l.order.tail == i {
		return
	}
	unlink(l.arena, &l.order, i)
	pushBack(l.arena, &l.order, i)
}

// evictOldest removes the head of the recency list.
// Caller must hold the mutex.
func (l *LRU[K, V]) evictOldest() {
	i := l.order.head
	if i == nilIdx {
		return
	}
	n := l.arena.at(i)
	key, value := n.key, n.value

	l.drop(i)
	l.metrics.Eviction()
	if l.onEvict != nil {
		l.onEvict(key, value)
	}
}

// drop detaches i from the list and the index and frees its slot.
func (l *LRU[K, V]) drop(i int32) {
	unlink(l.arena, &l.order, i)
	delete(l.index, l.arena.at(i).key)
	l.arena.release(i)
}
