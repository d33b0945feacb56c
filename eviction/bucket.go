package eviction

// bucket holds every LFU entry that currently shares one access frequency.
//
// It is a FIFO, not a set: entries are appended at the tail and the head is the
// oldest member, which makes it the eviction candidate when this bucket holds
// the minimum frequency.
type bucket[K comparable, V any] struct {
	freq    int
	arena   *arena[K, V]
	entries list
}

func newBucket[K comparable, V any](freq int, a *arena[K, V]) *bucket[K, V] {
	return &bucket[K, V]{freq: freq, arena: a, entries: newList()}
}

func (b *bucket[K, V]) append(i int32) { pushBack(b.arena, &b.entries, i) }

// remove detaches i in O(1). The caller guarantees i is a member.
func (b *bucket[K, V]) remove(i int32) { unlink(b.arena, &b.entries, i) }

func (b *bucket[K, V]) isEmpty() bool { return b.entries.size == 0 }

// first returns the oldest member, or nilIdx when the bucket is empty.
func (b *bucket[K, V]) first() int32 { return b.entries.head }

func (b *bucket[K, V]) len() int { return b.entries.size }
