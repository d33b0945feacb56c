package cache_test

import (
	"fmt"
	"testing"

	cache "github.com/krisalay/policycache"
)

func newBenchmarkCache(b *testing.B, p cache.PolicyType) cache.Policy[string, int] {
	b.Helper()
	c, err := cache.New[string, int](p, 100_000)
	if err != nil {
		b.Fatal(err)
	}
	return c
}

func newBenchmarkSharded(b *testing.B, p cache.PolicyType) *cache.ShardedCache[string, int] {
	b.Helper()
	c, err := cache.NewShardedCache[string, int](8, 100_000, p)
	if err != nil {
		b.Fatal(err)
	}
	return c
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkGetHit(b *testing.B) {
	for _, p := range policies {
		b.Run(p.String(), func(b *testing.B) {
			c := newBenchmarkCache(b, p)
			c.Put("key", 1)

			for b.Loop() {
				c.Get("key")
			}
		})
	}
}

func BenchmarkGetMiss(b *testing.B) {
	for _, p := range policies {
		b.Run(p.String(), func(b *testing.B) {
			c := newBenchmarkCache(b, p)

			i := 0
			for b.Loop() {
				c.Get(fmt.Sprintf("miss-%d", i))
				i++
			}
		})
	}
}

//
// ================= WRITE BENCH =================
//

func BenchmarkPutEvicting(b *testing.B) {
	for _, p := range policies {
		b.Run(p.String(), func(b *testing.B) {
			c, err := cache.New[int, int](p, 1024)
			if err != nil {
				b.Fatal(err)
			}

			i := 0
			for b.Loop() {
				c.Put(i, i)
				i++
			}
		})
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkParallelGet(b *testing.B) {
	for _, p := range policies {
		b.Run(p.String(), func(b *testing.B) {
			c := newBenchmarkCache(b, p)
			for i := range 1000 {
				c.Put(fmt.Sprintf("key-%d", i), i)
			}

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					c.Get("key-42")
				}
			})
		})
	}
}

func BenchmarkShardedParallelMixed(b *testing.B) {
	for _, p := range policies {
		b.Run(p.String(), func(b *testing.B) {
			c := newBenchmarkSharded(b, p)
			keys := make([]string, 10_000)
			for i := range keys {
				keys[i] = fmt.Sprintf("key-%d", i)
				c.Put(keys[i], i)
			}

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				j := 0
				for pb.Next() {
					k := keys[j%len(keys)]
					if j%4 == 0 {
						c.Put(k, j)
					} else {
						c.Get(k)
					}
					j++
				}
			})
		})
	}
}
