// Command runlock-bench drives a pool of concurrent acquirers against a
// single resource set and reports how many acquisitions succeeded versus
// timed out. Point it at a real Redis address, or omit -redis-addr to
// spin up an in-process miniredis instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/flowforge/runlock/lockerrors"
	"github.com/flowforge/runlock/redlock"
	"github.com/flowforge/runlock/runlock"
)

var (
	redisAddr   = flag.String("redis-addr", "", "Redis address (empty: start an in-process miniredis)")
	workers     = flag.Int("workers", 20, "Number of concurrent acquirers")
	iterations  = flag.Int("iterations", 50, "Acquisitions attempted per worker")
	holdTime    = flag.Duration("hold", 5*time.Millisecond, "Simulated critical-section duration")
	lockName    = flag.String("lock-name", "bench", "Lock name")
	maxAttempts = flag.Int("max-attempts", 10, "Retry config: max attempts")
)

func main() {
	flag.Parse()

	addr := *redisAddr
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatalf("miniredis: %v", err)
		}
		defer mr.Close()
		addr = mr.Addr()
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	client := redlock.NewClient(rdb)

	cfg := runlock.DefaultConfig()
	cfg.Retry.MaxAttempts = *maxAttempts
	coord, err := runlock.New(client, runlock.WithRetryConfig(cfg.Retry))
	if err != nil {
		log.Fatalf("runlock.New: %v", err)
	}
	defer coord.Quit(context.Background())

	var acquired, timedOut, otherErrs int64
	ctx := context.Background()

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < *workers; w++ {
		g.Go(func() error {
			for i := 0; i < *iterations; i++ {
				_, err := coord.Lock(ctx, *lockName, []string{"r"}, func(ctx context.Context) (any, error) {
					time.Sleep(*holdTime)
					return nil, nil
				})
				switch {
				case err == nil:
					atomic.AddInt64(&acquired, 1)
				case lockerrors.IsLockAcquisitionTimeout(err):
					atomic.AddInt64(&timedOut, 1)
				default:
					atomic.AddInt64(&otherErrs, 1)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	fmt.Printf("workers=%d iterations=%d elapsed=%s\n", *workers, *iterations, elapsed)
	fmt.Printf("acquired=%d timed_out=%d other_errors=%d\n", acquired, timedOut, otherErrs)
}
