//go:build !debug

package eviction

// Invariant checks are compiled in only with the debug build tag.

func (l *LRU[K, V]) checkInvariants() {}

func (l *LFU[K, V]) checkInvariants() {}
