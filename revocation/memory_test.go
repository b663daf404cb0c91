package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
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

func TestMemoryStoreRevokeAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	if revoked, err := store.IsRevoked(ctx, "tok-a"); err != nil || revoked {
		t.Fatalf("expected fresh store to report not revoked, got %v %v", revoked, err)
	}
	if err := store.Revoke(ctx, "tok-a", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, "tok-a"); !revoked {
		t.Fatal("expected tok-a to be revoked")
	}
	if revoked, _ := store.IsRevoked(ctx, "tok-b"); revoked {
		t.Fatal("expected tok-b to be unaffected")
	}
}

func TestMemoryStoreNonPositiveTTLIsNoop(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if err := store.Revoke(context.Background(), "tok", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no entry for zero ttl, got %d", store.Len())
	}
}

func TestMemoryStoreClockExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	store := NewMemoryStore(WithClock(clock.Now))
	defer store.Close()

	if err := store.Revoke(ctx, "refresh-token", 5*time.Second); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, "refresh-token"); !revoked {
		t.Fatal("expected entry before ttl")
	}

	clock.Advance(5 * time.Second)
	if revoked, _ := store.IsRevoked(ctx, "refresh-token"); revoked {
		t.Fatal("expected entry to be gone once ttl elapsed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected lookup to drop elapsed entry, len=%d", store.Len())
	}
}

func TestMemoryStoreTimerEviction(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if err := store.Revoke(context.Background(), "short", 20*time.Millisecond); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected timer to evict entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryStoreRevokeExtendsDeadline(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	store := NewMemoryStore(WithClock(clock.Now))
	defer store.Close()

	_ = store.Revoke(ctx, "tok", time.Second)
	_ = store.Revoke(ctx, "tok", time.Hour)
	clock.Advance(2 * time.Second)

	if revoked, _ := store.IsRevoked(ctx, "tok"); !revoked {
		t.Fatal("expected later revoke to replace the shorter deadline")
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore()
	store.Close()

	if err := store.Revoke(context.Background(), "tok", time.Minute); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := "tok-" + string(rune('a'+i%8))
			_ = store.Revoke(ctx, tok, time.Minute)
			if revoked, _ := store.IsRevoked(ctx, tok); !revoked {
				t.Errorf("expected %s revoked", tok)
			}
		}(i)
	}
	wg.Wait()

	if store.Len() != 8 {
		t.Fatalf("expected 8 distinct entries, got %d", store.Len())
	}
}
