package goJobs

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = testSecret
	cfg.JWT.Issuer = "gojobs-test"
	cfg.Audit.Enabled = false
	return cfg
}

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func newMemoryManager(t *testing.T, clock *testClock) *TokenManager {
	t.Helper()

	b := New().WithConfig(testConfig())
	if clock != nil {
		b = b.WithClock(clock.Now)
	}
	tm, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(tm.Close)
	return tm
}

func newRedisManager(t *testing.T, cfg Config) (*TokenManager, *miniredis.Miniredis) {
	t.Helper()

	mr, client := newTestRedis(t)
	tm, err := New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(tm.Close)
	return tm, mr
}
