package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLoginBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLoginAttempts = 3
	l, mr := newTestLimiter(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.CheckLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: unexpected %v", i, err)
		}
		if err := l.IncrementLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	if err := l.CheckLogin(ctx, " A@Example.com ", "10.0.0.2"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for normalized email, got %v", err)
	}
	if err := l.CheckLogin(ctx, "b@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for exhausted IP, got %v", err)
	}

	mr.FastForward(cfg.LoginWindow + time.Second)
	if err := l.CheckLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("window should have reset, got %v", err)
	}
}

func TestResetLogin(t *testing.T) {
	l, _ := newTestLimiter(t, DefaultConfig())
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "a@example.com", "")
	_ = l.IncrementLogin(ctx, "a@example.com", "")
	if n, err := l.LoginAttempts(ctx, "a@example.com"); err != nil || n != 2 {
		t.Fatalf("expected 2 attempts, got %d (%v)", n, err)
	}

	if err := l.ResetLogin(ctx, "a@example.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.LoginAttempts(ctx, "a@example.com"); n != 0 {
		t.Fatalf("expected 0 after reset, got %d", n)
	}
}

func TestForgotPasswordBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxForgotAttempts = 2
	l, _ := newTestLimiter(t, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.AllowForgotPassword(ctx, "a@example.com"); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if err := l.AllowForgotPassword(ctx, "a@example.com"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestBackendDown(t *testing.T) {
	l, mr := newTestLimiter(t, DefaultConfig())
	mr.Close()

	err := l.CheckLogin(context.Background(), "a@example.com", "")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
