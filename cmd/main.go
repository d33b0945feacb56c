package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	cache "github.com/krisalay/policycache"
	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/logger"
	"github.com/krisalay/policycache/metrics"
	"github.com/krisalay/policycache/types"
)

// ================= BACKING STORE =================

var errNotFound = errors.New("store: key not found")

type InMemoryStore struct {
	mu    sync.RWMutex
	data  map[string]string
	loads int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]string)}
}

func (s *InMemoryStore) Load(ctx context.Context, key string) (string, error) {
	// Pretend the store is slow so concurrent misses overlap.
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(50 * time.Millisecond):
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	fmt.Println("STORE  → load:", key)
	v, ok := s.data[key]
	if !ok {
		return "", errNotFound
	}
	return v, nil
}

func (s *InMemoryStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *InMemoryStore) Loads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads
}

var _ types.Loader[string, string] = (*InMemoryStore)(nil)

// ================= HELPERS =================

func show[V any](label string, v V, ok bool) {
	if !ok {
		fmt.Printf("CACHE  → GET %s = <miss>\n", label)
		return
	}
	fmt.Printf("CACHE  → GET %s = %v\n", label, v)
}

func printEvictions(c interface {
	SetEvictCallback(func(key string, value int))
}) {
	c.SetEvictCallback(func(key string, _ int) {
		fmt.Println("CACHE  → evicted:", key)
	})
}

// ================= MAIN =================

func main() {
	ctx := logger.WithRunID(context.Background(), uuid.NewString())
	log := logger.New(os.Stderr, slog.LevelDebug, logger.RunIDExtractor)
	reg := metrics.NewRegistry()

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("EVICTION POLICIES : LRU, LFU")
	fmt.Println("SHARDS            : 4 (read-through demo)")
	fmt.Println("CAPACITY          : 2 keys per demo engine")

	opts := []eviction.Option{eviction.WithMetrics(reg), eviction.WithLogger(log)}

	// ====================================================
	fmt.Println("\n==================== 1) LRU EVICTION ====================")
	lru := eviction.NewLRU[string, int](2, opts...)
	printEvictions(lru)

	lru.Put("a", 1)
	lru.Put("b", 2)
	v, ok := lru.Get("a")
	show("a", v, ok)
	lru.Put("c", 3) // b is now the least recently used
	v, ok = lru.Get("b")
	show("b", v, ok)
	fmt.Println("CACHE  → order (LRU → MRU):", lru.Keys())

	// ====================================================
	fmt.Println("\n==================== 2) LFU EVICTION ====================")
	lfu := eviction.NewLFU[string, int](2, opts...)
	printEvictions(lfu)

	lfu.Put("a", 1)
	lfu.Put("b", 2)
	lfu.Get("a")
	lfu.Get("a")
	lfu.Put("c", 3) // b has the lowest frequency
	v, ok = lfu.Get("b")
	show("b", v, ok)
	f, _ := lfu.Frequency("a")
	fmt.Printf("CACHE  → freq(a) = %d, minFreq = %d\n", f, lfu.MinFrequency())

	// ====================================================
	fmt.Println("\n==================== 3) LFU AGING ====================")
	aging := eviction.NewLFU[string, int](2, append(opts, eviction.WithMaxAverageFrequency(4))...)
	printEvictions(aging)

	aging.Put("old", 1)
	for range 10 {
		aging.Get("old")
	}
	f, _ = aging.Frequency("old")
	fmt.Printf("CACHE  → freq(old) after 10 hits = %d (aged)\n", f)

	aging.Put("new", 2)
	for range 5 {
		aging.Get("new")
	}
	aging.Put("next", 3)
	v, ok = aging.Get("old")
	show("old", v, ok)

	// ====================================================
	fmt.Println("\n==================== 4) READ-THROUGH + SINGLEFLIGHT ====================")
	store := NewInMemoryStore()
	store.Put("user:1", "alice")

	sharded, err := cache.NewShardedCache[string, string](4, 20, cache.LFU, opts...)
	if err != nil {
		log.ErrorContext(ctx, "build sharded cache", slog.Any("error", err))
		os.Exit(1)
	}

	var wg sync.WaitGroup
	for id := range 5 {
		wg.Go(func() {
			val, err := sharded.GetOrLoad(ctx, "user:1", store)
			if err != nil {
				fmt.Printf("GOROUTINE-%d → error: %v\n", id, err)
				return
			}
			fmt.Printf("GOROUTINE-%d → GET user:1 = %v\n", id, val)
		})
	}
	wg.Wait()
	fmt.Println("STORE  → loads so far:", store.Loads())

	if _, err := sharded.GetOrLoad(ctx, "user:404", store); err != nil {
		fmt.Println("CACHE  → GET user:404 failed:", err)
		fmt.Println("CACHE  → is ErrLoad:", errors.Is(err, cache.ErrLoad))
	}

	// ====================================================
	fmt.Println("\n==================== 5) REMOVE + CLEAR ====================")
	sharded.Remove("user:1")
	s, ok := sharded.Get("user:1")
	show("user:1 after remove", s, ok)

	reg.Time("demo.fill", func() {
		for i := range 50 {
			sharded.Put(fmt.Sprintf("k%d", i), "v")
		}
	})
	fmt.Printf("CACHE  → len after 50 puts = %d (capacity %d)\n", sharded.Len(), sharded.Capacity())
	sharded.Clear()
	fmt.Println("CACHE  → len after clear =", sharded.Len())

	// ====================================================
	st := reg.Snapshot()
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("HITS      : %d\n", st.Hits)
	fmt.Printf("MISSES    : %d\n", st.Misses)
	fmt.Printf("EVICTIONS : %d\n", st.Evictions)
	fmt.Printf("AGINGS    : %d\n", st.Agings)
	fmt.Printf("HIT RATE  : %.2f%%\n", st.HitRate()*100)

	log.InfoContext(ctx, "demo finished")
}
