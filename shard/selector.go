package shard

import "hash/maphash"

/*
This file decides HOW a cache key is assigned to a shard.

Every shard is an independent engine with its own lock. If all keys landed on
the same shard, that shard's lock would serialize every caller, so keys are
spread by hash.
*/

// Selector picks the shard index in [0, n) for a key. It must be
// deterministic: the same key always maps to the same shard.
type Selector[K comparable] interface {
	Select(key K, n int) int
}

// HashSelector spreads keys with maphash, seeded per selector.
type HashSelector[K comparable] struct {
	seed maphash.Seed
}

// NewHashSelector creates a HashSelector with a random seed.
func NewHashSelector[K comparable]() *HashSelector[K] {
	return &HashSelector[K]{seed: maphash.MakeSeed()}
}

// Select chooses the shard for a given key.
func (s *HashSelector[K]) Select(key K, n int) int {
	if n <= 1 {
		return 0
	}
	return int(maphash.Comparable(s.seed, key) % uint64(n))
}
