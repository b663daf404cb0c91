package password

import (
	"errors"
	"fmt"
)

const (
	// MinPasswordBytes is the shortest password any hasher accepts.
	MinPasswordBytes = 8
	// DefaultMaxPasswordBytes bounds work per hash. bcrypt caps lower, at 72.
	DefaultMaxPasswordBytes = 1024
)

var (
	ErrTooShort    = fmt.Errorf("password must be at least %d bytes", MinPasswordBytes)
	ErrTooLong     = errors.New("password exceeds maximum length")
	ErrUnsupported = errors.New("unsupported password hash format")
	// ErrMalformedHash is returned for a hash in a known format whose fields do not parse
	// or fall below the accepted cost floor.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hasher is implemented by every algorithm in this package.
type Hasher interface {
	Hash(password string) (string, error)
	// Verify returns false, nil for a wrong password and an error only for an unusable hash.
	Verify(password, encodedHash string) (bool, error)
	// NeedsRehash reports whether encodedHash was produced with weaker parameters.
	NeedsRehash(encodedHash string) (bool, error)
	// Recognizes reports whether encodedHash is in this hasher's format.
	Recognizes(encodedHash string) bool
}

// lengthPolicy bounds password bytes. New passwords must fit [MinPasswordBytes, max];
// verification only enforces max so old short passwords can still log in and be replaced.
type lengthPolicy struct {
	max int
}

func (p lengthPolicy) forHash(password string) error {
	if len(password) < MinPasswordBytes {
		return ErrTooShort
	}
	return p.forVerify(password)
}

func (p lengthPolicy) forVerify(password string) error {
	if len(password) > p.max {
		return ErrTooLong
	}
	return nil
}

// Chain hashes with its first hasher and verifies with whichever one recognizes the
// stored format.
type Chain struct {
	hashers []Hasher
}

func NewChain(primary Hasher, legacy ...Hasher) *Chain {
	return &Chain{hashers: append([]Hasher{primary}, legacy...)}
}

func (c *Chain) Hash(password string) (string, error) {
	return c.hashers[0].Hash(password)
}

func (c *Chain) Verify(password, encodedHash string) (bool, error) {
	for _, h := range c.hashers {
		if h.Recognizes(encodedHash) {
			return h.Verify(password, encodedHash)
		}
	}
	return false, ErrUnsupported
}

// NeedsRehash is true for any hash the primary hasher did not produce.
func (c *Chain) NeedsRehash(encodedHash string) (bool, error) {
	primary := c.hashers[0]
	if !primary.Recognizes(encodedHash) {
		for _, h := range c.hashers[1:] {
			if h.Recognizes(encodedHash) {
				return true, nil
			}
		}
		return false, ErrUnsupported
	}
	return primary.NeedsRehash(encodedHash)
}

func (c *Chain) Recognizes(encodedHash string) bool {
	for _, h := range c.hashers {
		if h.Recognizes(encodedHash) {
			return true
		}
	}
	return false
}
