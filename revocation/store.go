package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrUnavailable wraps backend failures (timeouts, connection errors).
	ErrUnavailable = errors.New("revocation store unavailable")
	// ErrClosed is returned by a MemoryStore after Close.
	ErrClosed = errors.New("revocation store closed")
)

// Store is the revocation list.
type Store interface {
	// Revoke remembers token for ttl. A non-positive ttl is a no-op.
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	// IsRevoked reports whether token is currently on the list.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Fingerprint is the identity a store keeps for token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
