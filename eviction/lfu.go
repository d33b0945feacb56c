// This file implements LFU eviction.

package eviction

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/krisalay/policycache/types"
)

/*
LFU is a capacity-bounded cache that evicts the entry with the lowest access
frequency. Among entries tied at that frequency, the one that entered the
frequency bucket first goes first.

State:
- index:    key -> arena slot
- buckets:  frequency -> FIFO of entries at that frequency
- minFreq:  lowest frequency with a non-empty bucket (1 when empty)
- totalFreq: sum of all resident frequencies, drives aging

Aging: pure counts never decay, so a key that was hot once would stay
unevictable forever. Whenever the average frequency goes above maxAverageFreq,
every frequency is lowered by maxAverageFreq/2 (never below 1).
*/
type LFU[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	index    map[K]int32
	arena    *arena[K, V]
	buckets  map[int]*bucket[K, V]

	minFreq        int
	totalFreq      int
	maxAverageFreq int

	metrics types.Metrics
	log     *slog.Logger
	onEvict func(key K, value V)
}

// NewLFU creates an LFU engine holding at most capacity entries.
// A capacity of zero (or less) gives a cache that stores nothing.
func NewLFU[K comparable, V any](capacity int, opts ...Option) *LFU[K, V] {
	o := buildOptions(opts)
	return &LFU[K, V]{
		capacity:       capacity,
		index:          make(map[K]int32, min(max(capacity, 0), 1024)),
		arena:          newArena[K, V](capacity),
		buckets:        make(map[int]*bucket[K, V]),
		minFreq:        1,
		maxAverageFreq: o.maxAverageFreq,
		metrics:        o.metrics,
		log:            o.logger.With(slog.String("policy", string(LFUPolicy))),
	}
}

// SetEvictCallback registers fn to be called with every entry dropped to make
// room for a new one. It runs under the engine lock and must not call back
// into the cache.
func (l *LFU[K, V]) SetEvictCallback(fn func(key K, value V)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onEvict = fn
}

// Put inserts or updates key. Updating counts as an access.
// Inserting into a full cache first evicts the oldest entry of the
// minimum-frequency bucket.
func (l *LFU[K, V]) Put(key K, value V) {
	if l.capacity <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.index[key]; ok {
		l.arena.at(i).value = value
		l.touch(i)
		l.checkInvariants()
		return
	}

	if len(l.index) >= l.capacity {
		l.evictLeastFrequent()
	}

	i := l.arena.alloc(key, value)
	l.arena.at(i).freq = 1
	l.bucketFor(1).append(i)
	l.index[key] = i
	l.minFreq = 1
	l.totalFreq++
	l.checkInvariants()
}

// Get returns the value for key and counts the access.
// A miss returns the zero value and false and leaves the cache untouched.
func (l *LFU[K, V]) Get(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[key]
	if !ok {
		l.metrics.Miss()
		var zero V
		return zero, false
	}

	l.metrics.Hit()
	l.touch(i)
	l.checkInvariants()
	return l.arena.at(i).value, true
}

// Value is Get without the found flag: a miss yields the zero value.
func (l *LFU[K, V]) Value(key K) V {
	v, _ := l.Get(key)
	return v
}

// Remove deletes key if present.
func (l *LFU[K, V]) Remove(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[key]
	if !ok {
		return
	}

	freq := l.arena.at(i).freq
	l.drop(i)
	if freq == l.minFreq {
		if b := l.buckets[freq]; b == nil || b.isEmpty() {
			l.recomputeMinFreq()
		}
	}
	l.checkInvariants()
}

// Len returns the number of resident entries.
func (l *LFU[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.index)
}

// Capacity returns the configured maximum number of entries.
func (l *LFU[K, V]) Capacity() int { return l.capacity }

// Clear removes every entry without calling the evict callback.
func (l *LFU[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.index)
	clear(l.buckets)
	l.arena.reset()
	l.minFreq = 1
	l.totalFreq = 0
}

// Frequency reports the current access frequency of key.
func (l *LFU[K, V]) Frequency(key K) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[key]
	if !ok {
		return 0, false
	}
	return l.arena.at(i).freq, true
}

// MinFrequency reports the frequency the next eviction will be taken from.
func (l *LFU[K, V]) MinFrequency() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minFreq
}

// touch moves i one frequency up and runs the aging check.
// Caller must hold the mutex.
func (l *LFU[K, V]) touch(i int32) {
	n := l.arena.at(i)
	old := n.freq

	src := l.buckets[old]
	src.remove(i)
	if src.isEmpty() {
		delete(l.buckets, old)
		if old == l.minFreq {
			l.minFreq++
		}
	}
	n.freq++
	l.bucketFor(n.freq).append(i)

	l.totalFreq++

	if l.averageFreq() > l.maxAverageFreq {
		l.age()
	}
}

func (l *LFU[K, V]) averageFreq() int {
	if len(l.index) == 0 {
		return 0
	}
	return l.totalFreq / len(l.index)
}

/*
age lowers every frequency by maxAverageFreq/2 (floored at 1) and rebuilds the
bucket placement.

O(n). Consecutive passes are at least n*maxAverageFreq/2 accesses apart.
*/
func (l *LFU[K, V]) age() {
	step := l.maxAverageFreq / 2

	// Walk entries from the lowest frequency up, oldest first within a bucket,
	// so entries that collapse into the same bucket keep their relative order.
	freqs := slices.Sorted(maps.Keys(l.buckets))
	members := make([]int32, 0, len(l.index))
	for _, f := range freqs {
		b := l.buckets[f]
		for i := b.first(); i != nilIdx; i = l.arena.at(i).next {
			members = append(members, i)
		}
	}

	for _, i := range members {
		n := l.arena.at(i)
		l.buckets[n.freq].remove(i)

		reduced := max(n.freq-step, 1)
		l.totalFreq -= n.freq - reduced
		n.freq = reduced

		l.bucketFor(reduced).append(i)
	}

	for f, b := range l.buckets {
		if b.isEmpty() {
			delete(l.buckets, f)
		}
	}
	l.recomputeMinFreq()
	l.metrics.Aging()

	l.log.Debug("lfu aging pass",
		slog.Int("entries", len(l.index)),
		slog.Int("min_frequency", l.minFreq),
		slog.Int("total_frequency", l.totalFreq),
	)
}

// recomputeMinFreq scans the buckets for the smallest non-empty frequency.
func (l *LFU[K, V]) recomputeMinFreq() {
	minFreq := 0
	for f, b := range l.buckets {
		if b.isEmpty() {
			continue
		}
		if minFreq == 0 || f < minFreq {
			minFreq = f
		}
	}
	if minFreq == 0 {
		minFreq = 1
	}
	l.minFreq = minFreq
}

// evictLeastFrequent drops the FIFO head of the minFreq bucket.
// Caller must hold the mutex.
func (l *LFU[K, V]) evictLeastFrequent() {
	b := l.buckets[l.minFreq]
	if b == nil || b.isEmpty() {
		// Only reachable if minFreq went stale; find the real minimum.
		l.recomputeMinFreq()
		if b = l.buckets[l.minFreq]; b == nil || b.isEmpty() {
			return
		}
	}

	i := b.first()
	n := l.arena.at(i)
	key, value := n.key, n.value

	l.drop(i)
	l.metrics.Eviction()
	if l.onEvict != nil {
		l.onEvict(key, value)
	}
}

// drop detaches i from its bucket and the index, fixes totalFreq and frees the
// slot. minFreq is left to the caller.
func (l *LFU[K, V]) drop(i int32) {
	n := l.arena.at(i)
	b := l.buckets[n.freq]
	b.remove(i)
	if b.isEmpty() {
		delete(l.buckets, n.freq)
	}
	l.totalFreq -= n.freq
	delete(l.index, n.key)
	l.arena.release(i)
}

func (l *LFU[K, V]) bucketFor(freq int) *bucket[K, V] {
	b, ok := l.buckets[freq]
	if !ok {
		b = newBucket(freq, l.arena)
		l.buckets[freq] = b
	}
	return b
}
