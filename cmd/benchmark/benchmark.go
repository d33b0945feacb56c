package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cache "github.com/krisalay/policycache"
	"github.com/krisalay/policycache/config"
	"github.com/krisalay/policycache/logger"
	"github.com/krisalay/policycache/metrics"
)

// ================= WORKLOADS =================

// workload picks the key for operation op (0-based, global across workers).
type workload struct {
	name string
	key  func(r *rand.Rand, op int) int
}

func workloads(b config.BenchmarkConfig) []workload {
	hot, cold := max(b.HotKeys, 1), max(b.ColdKeys, 1)
	loopSize := b.HotKeys + b.ColdKeys

	return []workload{
		{
			// A small set of hot keys gets most of the traffic.
			name: "hot-data",
			key: func(r *rand.Rand, _ int) int {
				if r.Float64() < b.HotRatio {
					return r.IntN(hot)
				}
				return hot + r.IntN(cold)
			},
		},
		{
			// Mostly a sequential scan larger than the cache, which defeats LRU.
			name: "loop-scan",
			key: func(r *rand.Rand, op int) int {
				switch p := r.Float64(); {
				case p < 0.6:
					return op % loopSize
				case p < 0.9:
					return r.IntN(loopSize)
				default:
					return loopSize + r.IntN(loopSize)
				}
			},
		},
		{
			// The hot set moves five times during the run; stale hot keys must
			// give way to the new ones.
			name: "workload-shift",
			key: func(r *rand.Rand, op int) int {
				phase := op * 5 / max(b.Operations, 1)
				if r.Float64() < b.HotRatio {
					return phase*hot + r.IntN(hot)
				}
				return 5*hot + r.IntN(cold)
			},
		},
	}
}

// ================= RUNNER =================

type result struct {
	workload string
	policy   cache.PolicyType
	stats    metrics.Snapshot
	getMean  time.Duration
	putMean  time.Duration
	elapsed  time.Duration
}

func runWorkload(ctx context.Context, cfg config.Config, p cache.PolicyType, w workload, log *slog.Logger) (result, error) {
	reg := metrics.NewRegistry()
	c, err := cache.NewShardedCache[int, int](
		cfg.Cache.Shards,
		cfg.Cache.Capacity,
		p,
		cfg.Cache.Options(reg, log)...,
	)
	if err != nil {
		return result{}, err
	}

	b := cfg.Benchmark
	getTimer, putTimer := reg.Timer("op.get"), reg.Timer("op.put")

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for worker := range b.Workers {
		g.Go(func() error {
			r := rand.New(rand.NewPCG(uint64(b.Seed), uint64(worker)))
			first, n := workerOps(b.Operations, b.Workers, worker)
			for op := first; op < first+n; op++ {
				if op%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}

				key := w.key(r, op)
				opStart := time.Now()
				if r.Float64() < b.PutRatio {
					c.Put(key, op)
					putTimer.UpdateSince(opStart)
					continue
				}
				if _, ok := c.Get(key); !ok {
					// Simulate fetching from the backing store.
					c.Put(key, op)
				}
				getTimer.UpdateSince(opStart)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result{}, err
	}

	res := result{
		workload: w.name,
		policy:   p,
		stats:    reg.Snapshot(),
		getMean:  time.Duration(getTimer.Mean()),
		putMean:  time.Duration(putTimer.Mean()),
		elapsed:  time.Since(start),
	}

	log.InfoContext(ctx, "workload finished",
		slog.String("workload", res.workload),
		slog.String("policy", res.policy.String()),
		slog.Float64("hit_rate", res.stats.HitRate()),
		slog.Int64("evictions", res.stats.Evictions),
		slog.Int64("agings", res.stats.Agings),
		slog.Duration("elapsed", res.elapsed),
	)
	if log.Enabled(ctx, slog.LevelDebug) {
		reg.WriteOnce(os.Stderr)
	}
	return res, nil
}

// workerOps returns the slice [first, first+n) of total operations run by
// worker. The last worker also takes the remainder.
func workerOps(total, workers, worker int) (first, n int) {
	per := total / workers
	first = worker * per
	n = per
	if worker == workers-1 {
		n += total % workers
	}
	return first, n
}

// ================= MAIN =================

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "benchmark:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := logger.WithRunID(context.Background(), uuid.NewString())
	log := logger.New(os.Stderr, cfg.Log.SlogLevel(), logger.RunIDExtractor)

	log.InfoContext(ctx, "benchmark starting",
		slog.Int("capacity", cfg.Cache.Capacity),
		slog.Int("shards", cfg.Cache.Shards),
		slog.Int("hot_keys", cfg.Benchmark.HotKeys),
		slog.Int("cold_keys", cfg.Benchmark.ColdKeys),
		slog.Int("operations", cfg.Benchmark.Operations),
		slog.Int("workers", cfg.Benchmark.Workers),
	)

	var results []result
	for _, w := range workloads(cfg.Benchmark) {
		for _, p := range []cache.PolicyType{cache.LRU, cache.LFU} {
			res, err := runWorkload(ctx, cfg, p, w, log)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return fmt.Errorf("%s/%s: %w", w.name, p, err)
			}
			results = append(results, res)
		}
	}

	return printResults(results)
}

func printResults(results []result) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKLOAD\tPOLICY\tHIT RATE\tHITS\tMISSES\tEVICTIONS\tGET MEAN\tPUT MEAN\tTIME")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%d\t%d\t%d\t%v\t%v\t%v\n",
			r.workload, r.policy,
			r.stats.HitRate()*100,
			r.stats.Hits, r.stats.Misses, r.stats.Evictions,
			r.getMean, r.putMean,
			r.elapsed.Round(time.Millisecond),
		)
	}
	return tw.Flush()
}
