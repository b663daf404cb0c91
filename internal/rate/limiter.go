package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Prefix            string
	EnableIPThrottle  bool
	MaxLoginAttempts  int
	LoginWindow       time.Duration
	MaxForgotAttempts int
	ForgotWindow      time.Duration
}

// DefaultConfig returns 5 failed logins per 15 minutes and 3 reset mails per hour.
func DefaultConfig() Config {
	return Config{
		Prefix:            "gojobs:rl",
		EnableIPThrottle:  true,
		MaxLoginAttempts:  5,
		LoginWindow:       15 * time.Minute,
		MaxForgotAttempts: 3,
		ForgotWindow:      time.Hour,
	}
}

// Limiter enforces per-email and per-IP budgets for login and
// password-reset requests using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultConfig().Prefix
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin reports ErrRateLimited once the email or IP has used up its
// failed-login budget. It does not count the attempt.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, l.loginKey(email), l.config.MaxLoginAttempts); err != nil {
		return err
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, l.loginIPKey(ip), l.config.MaxLoginAttempts); err != nil {
			return err
		}
	}

	return nil
}

// IncrementLogin records a failed login attempt for the email+IP pair.
func (l *Limiter) IncrementLogin(ctx context.Context, email, ip string) error {
	count, err := l.incrementWithTTL(ctx, l.loginKey(email), l.config.LoginWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err = l.incrementWithTTL(ctx, l.loginIPKey(ip), l.config.LoginWindow)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxLoginAttempts) {
			return ErrRateLimited
		}
	}

	return nil
}

// ResetLogin clears the per-email counter after a successful login.
// The per-IP counter is left to expire.
func (l *Limiter) ResetLogin(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.loginKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// AllowForgotPassword counts a reset-mail request and reports ErrRateLimited
// past the budget.
func (l *Limiter) AllowForgotPassword(ctx context.Context, email string) error {
	count, err := l.incrementWithTTL(ctx, l.key("fp", normalizeEmail(email)), l.config.ForgotWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxForgotAttempts) {
		return ErrRateLimited
	}
	return nil
}

// LoginAttempts returns the current failed-login counter for an email.
// Missing keys return zero.
func (l *Limiter) LoginAttempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.loginKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: the TTL is set on the first hit only.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func (l *Limiter) loginKey(email string) string { return l.key("login", normalizeEmail(email)) }
func (l *Limiter) loginIPKey(ip string) string   { return l.key("loginip", ip) }

func (l *Limiter) key(scope, id string) string {
	return l.config.Prefix + ":" + scope + ":" + id
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
