package eviction

/*
This file defines where entries actually live.

Instead of allocating one heap object per entry and linking them with pointers,
both engines keep their entries in a single slice (the arena) and link them by
slice index. Removing and inserting stay O(1), there are no reference cycles,
and a freed slot is reused by the next insert.
*/

// nilIdx marks "no neighbour" in prev/next links.
const nilIdx int32 = -1

// node is one cache entry plus its list links.
type node[K comparable, V any] struct {
	key   K
	value V

	// freq is only used by LFU. It is always >= 1 while the node is live.
	freq int

	prev int32
	next int32
}

type arena[K comparable, V any] struct {
	nodes []node[K, V]

	// free holds indices of released slots.
	free []int32
}

func newArena[K comparable, V any](capacity int) *arena[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	// Do not trust huge capacities for the initial allocation.
	hint := min(capacity, 1024)
	return &arena[K, V]{nodes: make([]node[K, V], 0, hint)}
}

// alloc returns the index of a fresh, unlinked node holding key and value.
func (a *arena[K, V]) alloc(key K, value V) int32 {
	n := node[K, V]{key: key, value: value, prev: nilIdx, next: nilIdx}
	if l := len(a.free); l > 0 {
		i := a.free[l-1]
		a.free = a.free[:l-1]
		a.nodes[i] = n
		return i
	}
	a.nodes = append(a.nodes, n)
	return int32(len(a.nodes) - 1)
}

// release zeroes the slot so the arena does not keep the key and value alive.
func (a *arena[K, V]) release(i int32) {
	a.nodes[i] = node[K, V]{prev: nilIdx, next: nilIdx}
	a.free = append(a.free, i)
}

func (a *arena[K, V]) at(i int32) *node[K, V] { return &a.nodes[i] }

func (a *arena[K, V]) reset() {
	clear(a.nodes)
	a.nodes = a.nodes[:0]
	a.free = a.free[:0]
}

// list is a doubly linked sequence of arena nodes. head is the oldest element,
// tail the newest one.
type list struct {
	head int32
	tail int32
	size int
}

func newList() list { return list{head: nilIdx, tail: nilIdx} }

func pushBack[K comparable, V any](a *arena[K, V], l *list, i int32) {
	n := a.at(i)
	n.prev = l.tail
	n.next = nilIdx
	if l.tail != nilIdx {
		a.at(l.tail).next = i
	} else {
		l.head = i
	}
	l.tail = i
	l.size++
}

func unlink[K comparable, V any](a *arena[K, V], l *list, i int32) {
	n := a.at(i)
	if n.prev != nilIdx {
		a.at(n.prev).next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nilIdx {
		a.at(n.next).prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nilIdx, nilIdx
	l.size--
}
