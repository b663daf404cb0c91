package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		tokens      = flag.Int("tokens", 20000, "number of access tokens to issue")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (verify + revoke)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gojobs:loadtest", "revocation key prefix")
	)
	flag.Parse()

	if *tokens <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "tokens, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := goJobs.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("loadtest-secret-loadtest-secret-32")
	cfg.Revocation.RedisPrefix = *prefix
	cfg.Audit.Enabled = false
	tm, err := goJobs.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer tm.Close()

	issued := make([]string, *tokens)
	fmt.Printf("issuing %d token pairs...\n", *tokens)
	startIssue := time.Now()
	for i := range issued {
		pair, err := tm.IssueAccessAndRefresh(ctx, fmt.Sprintf("user-%d", i), goJobs.RoleJobseeker)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		issued[i] = pair.AccessToken
	}
	fmt.Printf("issued in %s\n", time.Since(startIssue).Round(time.Millisecond))

	verifyStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) error {
		_, err := tm.Verify(ctx, issued[r.Intn(len(issued))])
		if errors.Is(err, goJobs.ErrTokenRevoked) {
			return nil
		}
		return err
	})

	revokeStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) error {
		token := issued[r.Intn(len(issued))]
		if err := tm.RevokeRemaining(ctx, token); err != nil {
			return err
		}
		if _, err := tm.Verify(ctx, token); !errors.Is(err, goJobs.ErrTokenRevoked) {
			return fmt.Errorf("revoked token still verifies: %v", err)
		}
		return nil
	})

	fmt.Println("---- results ----")
	printStats("verify", verifyStats)
	printStats("revoke+verify", revokeStats)

	snap := tm.MetricsSnapshot()
	fmt.Printf("metrics: verify_success=%d verify_revoked=%d revoke_success=%d revoke_failure=%d\n",
		snap.Counters[goJobs.MetricVerifySuccess],
		snap.Counters[goJobs.MetricVerifyRevoked],
		snap.Counters[goJobs.MetricRevokeSuccess],
		snap.Counters[goJobs.MetricRevokeFailure],
	)
}

func runPhase(ops, concurrency int, seed int64, op func(*rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
