package goJobs

import (
	"strings"
	"time"
)

// TokenKind tags what a token may be used for.
type TokenKind string

const (
	KindAccess            TokenKind = "access"
	KindRefresh           TokenKind = "refresh"
	KindReset             TokenKind = "reset"
	KindEmailVerification TokenKind = "email_verification"
)

// Valid reports whether k is one of the four issued kinds.
func (k TokenKind) Valid() bool {
	switch k {
	case KindAccess, KindRefresh, KindReset, KindEmailVerification:
		return true
	default:
		return false
	}
}

// Role names embedded in tokens. Any role is accepted by the TokenManager; the accounts
// service only creates these two.
const (
	RoleJobseeker = "jobseeker"
	RoleEmployer  = "employer"
)

// NormalizeRole trims and lowercases role so "Employer " and "employer" compare equal.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// TokenPair is returned by IssueAccessAndRefresh.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	Subject   string
	Role      string
	Kind      TokenKind
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining returns how long the token stays valid after now, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c == nil {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
