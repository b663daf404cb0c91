package goJobs

import (
	"errors"
	"strings"
	"time"
)

// Config holds everything a TokenManager needs. Start from DefaultConfig and override.
type Config struct {
	JWT        JWTConfig
	Tokens     TokenConfig
	Revocation RevocationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig selects the signing primitive. For hs256 PrivateKey is the shared secret.
type JWTConfig struct {
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
	// VerifyKeys lists every key accepted on verification by kid. Tokens are still
	// signed with PrivateKey under KeyID, which is added to the set when missing.
	VerifyKeys map[string][]byte
}

/*
====================================
TOKEN LIFETIMES
====================================
*/

type TokenConfig struct {
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	ResetTTL        time.Duration
	VerificationTTL time.Duration
}

/*
====================================
REVOCATION
====================================
*/

// RevocationConfig controls the external revocation store. It has no effect when the
// TokenManager runs on the in-memory store.
type RevocationConfig struct {
	RedisPrefix string
	OpTimeout   time.Duration
	// DegradeToMemory keeps a process-local copy of entries the external store rejected.
	DegradeToMemory bool
}

/*
====================================
AUDIT & METRICS
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns one hour access tokens, seven day refresh tokens, one hour reset
// tokens and 24 hour verification tokens, signed with HS256. A secret must still be set.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod: "hs256",
		},
		Tokens: TokenConfig{
			AccessTTL:       time.Hour,
			RefreshTTL:      7 * 24 * time.Hour,
			ResetTTL:        time.Hour,
			VerificationTTL: 24 * time.Hour,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "gojobs:revoked",
			OpTimeout:   250 * time.Millisecond,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	if cfg.JWT.VerifyKeys != nil {
		out.JWT.VerifyKeys = make(map[string][]byte, len(cfg.JWT.VerifyKeys))
		for kid, key := range cfg.JWT.VerifyKeys {
			out.JWT.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate rejects configurations that cannot issue or verify tokens safely.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch strings.ToLower(c.JWT.SigningMethod) {
	case "", "hs256":
		if len(c.JWT.PrivateKey) == 0 {
			return errors.New("JWT.PrivateKey (hs256 secret) is required")
		}
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 || len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires both JWT.PrivateKey and JWT.PublicKey")
		}
	default:
		return errors.New("JWT.SigningMethod must be hs256 or ed25519")
	}
	if len(c.JWT.VerifyKeys) > 0 && strings.TrimSpace(c.JWT.KeyID) == "" {
		return errors.New("JWT.VerifyKeys requires JWT.KeyID")
	}
	if c.JWT.Audience != "" && strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT.Audience must not be blank")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT.Leeway must be between 0 and 2m")
	}

	if c.Tokens.AccessTTL <= 0 {
		return errors.New("Tokens.AccessTTL must be > 0")
	}
	if c.Tokens.RefreshTTL <= 0 {
		return errors.New("Tokens.RefreshTTL must be > 0")
	}
	if c.Tokens.RefreshTTL < c.Tokens.AccessTTL {
		return errors.New("Tokens.RefreshTTL must not be shorter than Tokens.AccessTTL")
	}
	if c.Tokens.ResetTTL <= 0 || c.Tokens.ResetTTL > 24*time.Hour {
		return errors.New("Tokens.ResetTTL must be in (0, 24h]")
	}
	if c.Tokens.VerificationTTL <= 0 || c.Tokens.VerificationTTL > 7*24*time.Hour {
		return errors.New("Tokens.VerificationTTL must be in (0, 7d]")
	}

	if c.Revocation.OpTimeout < 0 {
		return errors.New("Revocation.OpTimeout must be >= 0")
	}
	if strings.ContainsAny(c.Revocation.RedisPrefix, " \t\r\n") {
		return errors.New("Revocation.RedisPrefix must not contain whitespace")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
