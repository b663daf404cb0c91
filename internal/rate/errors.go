package rate

import "errors"

var (
	// ErrRateLimited is returned once a caller has exhausted its budget for the window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps counter backend failures.
	ErrRedisUnavailable = errors.New("rate limiter backend unavailable")
)
