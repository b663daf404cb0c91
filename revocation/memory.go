package revocation

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	expiresAt time.Time
	timer     *time.Timer
}

// MemoryStore is a process-local Store. Entries are evicted by a timer when their
// ttl elapses; lookups also ignore entries whose deadline has passed on the store clock.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
	closed  bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revoke records token until ttl elapses. Re-revoking replaces the previous deadline.
func (s *MemoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := Fingerprint(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if prev, ok := s.entries[key]; ok {
		prev.timer.Stop()
	}

	entry := &memoryEntry{expiresAt: s.now().Add(ttl)}
	entry.timer = time.AfterFunc(ttl, func() { s.evict(key, entry) })
	s.entries[key] = entry
	return nil
}

// IsRevoked reports whether token has a live entry.
func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	key := Fingerprint(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		entry.timer.Stop()
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

// Len returns the number of entries currently held, including ones whose deadline has
// passed but whose timer has not fired yet.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops every pending eviction timer and drops all entries.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		entry.timer.Stop()
		delete(s.entries, key)
	}
	s.closed = true
}

// evict removes key only if it still points at entry; a later Revoke may have replaced it.
func (s *MemoryStore) evict(key string, entry *memoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.entries[key]; ok && cur == entry {
		delete(s.entries, key)
	}
}
