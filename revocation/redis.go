package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultOpTimeout = 250 * time.Millisecond

// RedisStore is a Store backed by Redis keys with native expiry.
type RedisStore struct {
	redis     redis.UniversalClient
	prefix    string
	opTimeout time.Duration
}

// NewRedisStore returns a RedisStore writing keys under prefix ("rvk" when empty).
// Every round trip is bounded by opTimeout (250ms when zero).
func NewRedisStore(client redis.UniversalClient, prefix string, opTimeout time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "rvk"
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &RedisStore{
		redis:     client,
		prefix:    prefix,
		opTimeout: opTimeout,
	}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + Fingerprint(token)
}

// Revoke sets the token key with a PX expiry equal to ttl.
func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked checks key existence.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	n, err := s.redis.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// TTL returns the remaining lifetime of a revocation entry, or zero when absent.
func (s *RedisStore) TTL(ctx context.Context, token string) (time.Duration, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	ttl, err := s.redis.PTTL(ctx, s.key(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
