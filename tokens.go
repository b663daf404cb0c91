package goJobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goJobs/jwt"
	"github.com/MrEthical07/goJobs/revocation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenManager issues, verifies and revokes the four token kinds. One instance is built
// at startup and shared by every handler; all methods are safe for concurrent use.
type TokenManager struct {
	config   Config
	jwt      *jwt.Manager
	revoked  revocation.Store
	fallback *revocation.MemoryStore
	owned    *revocation.MemoryStore

	log     logrus.FieldLogger
	audit   *auditDispatcher
	metrics *Metrics
	now     func() time.Time

	closed atomic.Bool
}

func (m *TokenManager) ready() bool {
	return m != nil && !m.closed.Load()
}

// IssueAccessAndRefresh signs a short-lived access token and a long-lived refresh token
// for subjectID. role is normalized to lowercase before it is embedded.
func (m *TokenManager) IssueAccessAndRefresh(ctx context.Context, subjectID, role string) (TokenPair, error) {
	if !m.ready() {
		return TokenPair{}, ErrManagerNotReady
	}
	role = NormalizeRole(role)

	access, accessClaims, err := m.issue(ctx, subjectID, role, KindAccess, m.config.Tokens.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshClaims, err := m.issue(ctx, subjectID, role, KindRefresh, m.config.Tokens.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.ExpiresAt,
		RefreshExpiresAt: refreshClaims.ExpiresAt,
	}, nil
}

// IssuePasswordResetToken signs a reset token. Callers revoke it once consumed.
func (m *TokenManager) IssuePasswordResetToken(ctx context.Context, subjectID string) (string, error) {
	if !m.ready() {
		return "", ErrManagerNotReady
	}
	token, _, err := m.issue(ctx, subjectID, "", KindReset, m.config.Tokens.ResetTTL)
	return token, err
}

func (m *TokenManager) IssueEmailVerificationToken(ctx context.Context, subjectID string) (string, error) {
	if !m.ready() {
		return "", ErrManagerNotReady
	}
	token, _, err := m.issue(ctx, subjectID, "", KindEmailVerification, m.config.Tokens.VerificationTTL)
	return token, err
}

func (m *TokenManager) issue(ctx context.Context, subjectID, role string, kind TokenKind, ttl time.Duration) (string, *Claims, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", nil, m.issueFailed(ctx, kind, subjectID, errors.New("subject id is required"))
	}

	token, raw, err := m.jwt.Sign(subjectID, role, string(kind), uuid.NewString(), ttl)
	if err != nil {
		m.log.WithError(err).WithField("kind", kind).Error("token signing failed")
		return "", nil, m.issueFailed(ctx, kind, subjectID, err)
	}

	claims := claimsFrom(raw)
	m.metrics.Inc(issuedMetric(kind))
	m.emitAudit(ctx, auditEventTokenIssued, true, claims, nil)
	return token, claims, nil
}

func (m *TokenManager) issueFailed(ctx context.Context, kind TokenKind, subjectID string, cause error) error {
	err := fmt.Errorf("%w: %v", ErrTokenCreation, cause)
	m.metrics.Inc(MetricTokenIssueFailure)
	m.emitAudit(ctx, auditEventTokenIssued, false, &Claims{Subject: subjectID, Kind: kind}, err)
	return err
}

// reject counts and audits a failed verification and returns err unchanged.
func (m *TokenManager) reject(ctx context.Context, metric MetricID, claims *Claims, err error) error {
	m.metrics.Inc(metric)
	m.emitAudit(ctx, auditEventVerifyRejected, false, claims, err)
	return err
}

// Verify checks the revocation list first, then signature and expiry. It returns exactly
// one of ErrTokenRevoked, ErrTokenExpired or ErrTokenMalformed on rejection, or
// ErrRevocationUnavailable when the revocation list cannot be consulted.
func (m *TokenManager) Verify(ctx context.Context, token string) (*Claims, error) {
	if !m.ready() {
		return nil, ErrManagerNotReady
	}
	if m.metrics.LatencyEnabled() {
		start := m.now()
		defer func() {
			m.metrics.Observe(MetricVerifyLatency, m.now().Sub(start))
		}()
	}

	if strings.TrimSpace(token) == "" {
		return nil, m.reject(ctx, MetricVerifyMalformed, nil, fmt.Errorf("%w: empty token", ErrTokenMalformed))
	}

	revoked, err := m.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, m.reject(ctx, MetricVerifyRevoked, nil, ErrTokenRevoked)
	}

	raw, err := m.jwt.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, m.reject(ctx, MetricVerifyExpired, nil, ErrTokenExpired)
		}
		return nil, m.reject(ctx, MetricVerifyMalformed, nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err))
	}

	claims := claimsFrom(raw)
	if !claims.Kind.Valid() || claims.Subject == "" {
		return nil, m.reject(ctx, MetricVerifyMalformed, nil, fmt.Errorf("%w: missing subject or kind", ErrTokenMalformed))
	}

	m.metrics.Inc(MetricVerifySuccess)
	return claims, nil
}

// VerifyKind is Verify plus a purpose check.
func (m *TokenManager) VerifyKind(ctx context.Context, token string, kind TokenKind) (*Claims, error) {
	claims, err := m.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, m.reject(ctx, MetricVerifyWrongKind, claims, ErrTokenWrongKind)
	}
	return claims, nil
}

// Revoke puts token on the revocation list for ttl. A non-positive ttl does nothing.
//
// When the external store fails the error wraps ErrRevocationUnavailable. With
// Revocation.DegradeToMemory the entry is also kept locally and the error additionally
// wraps ErrRevocationDegraded; this process then rejects the token until ttl elapses.
func (m *TokenManager) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if !m.ready() {
		return ErrManagerNotReady
	}
	if ttl <= 0 {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: empty token", ErrTokenMalformed)
	}

	err := m.revoked.Revoke(ctx, token, ttl)
	if err == nil {
		m.metrics.Inc(MetricRevokeSuccess)
		m.emitAudit(ctx, auditEventTokenRevoked, true, nil, nil)
		return nil
	}

	m.metrics.Inc(MetricRevokeFailure)
	entry := m.log.WithError(err).WithField("ttl_ms", ttl.Milliseconds())
	m.emitAudit(ctx, auditEventTokenRevoked, false, nil, err)

	if m.fallback != nil {
		if ferr := m.fallback.Revoke(ctx, token, ttl); ferr == nil {
			m.metrics.Inc(MetricRevokeDegraded)
			entry.Warn("revocation store unavailable, kept entry in memory")
			return fmt.Errorf("%w: %w: %v", ErrRevocationUnavailable, ErrRevocationDegraded, err)
		}
	}

	entry.Error("revocation store unavailable")
	return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
}

// RevokeRemaining revokes token for whatever validity it has left. Tokens that are
// already expired need no entry and return nil.
func (m *TokenManager) RevokeRemaining(ctx context.Context, token string) error {
	if !m.ready() {
		return ErrManagerNotReady
	}
	raw, err := m.jwt.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return m.Revoke(ctx, token, claimsFrom(raw).Remaining(m.now()))
}

// IsRevoked reports whether token is on the revocation list, without decoding it.
func (m *TokenManager) IsRevoked(ctx context.Context, token string) (bool, error) {
	if !m.ready() {
		return false, ErrManagerNotReady
	}

	revoked, err := m.revoked.IsRevoked(ctx, token)
	if err == nil && revoked {
		return true, nil
	}

	if m.fallback != nil {
		local, ferr := m.fallback.IsRevoked(ctx, token)
		if ferr == nil && local {
			return true, nil
		}
	}

	if err != nil {
		m.log.WithError(err).Warn("revocation lookup failed")
		return false, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return false, nil
}

// Config returns a copy of the effective configuration.
func (m *TokenManager) Config() Config {
	return cloneConfig(m.config)
}

// Metrics exposes the counter set so collaborating services record into the same snapshot.
func (m *TokenManager) Metrics() *Metrics {
	if m == nil {
		return nil
	}
	return m.metrics
}

func (m *TokenManager) MetricsSnapshot() MetricsSnapshot {
	if m == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return m.metrics.Snapshot()
}

func (m *TokenManager) AuditDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.audit.Dropped()
}

// Close flushes pending audit events and stops in-memory eviction timers. Every token
// operation afterwards returns ErrManagerNotReady. Close is idempotent.
func (m *TokenManager) Close() {
	if m == nil || !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.audit.Close()
	if m.owned != nil {
		m.owned.Close()
	}
	if m.fallback != nil {
		m.fallback.Close()
	}
}

func claimsFrom(raw *jwt.Claims) *Claims {
	c := &Claims{
		Subject: raw.Subject,
		Role:    raw.Role,
		Kind:    TokenKind(raw.Kind),
		TokenID: raw.ID,
	}
	if raw.IssuedAt != nil {
		c.IssuedAt = raw.IssuedAt.Time
	}
	if raw.ExpiresAt != nil {
		c.ExpiresAt = raw.ExpiresAt.Time
	}
	return c
}

func issuedMetric(kind TokenKind) MetricID {
	switch kind {
	case KindAccess:
		return MetricAccessIssued
	case KindRefresh:
		return MetricRefreshIssued
	case KindReset:
		return MetricResetIssued
	default:
		return MetricEmailVerificationIssued
	}
}
