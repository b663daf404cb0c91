package goJobs

import (
	"context"
	"errors"
)

const (
	auditEventTokenIssued    = "token_issued"
	auditEventTokenRevoked   = "token_revoked"
	auditEventVerifyRejected = "token_verify_rejected"
)

// AuditErrorCode is the stable, non-sensitive error label carried by audit events.
type AuditErrorCode string

const (
	auditErrTokenExpired   AuditErrorCode = "token_expired"
	auditErrTokenRevoked   AuditErrorCode = "token_revoked"
	auditErrTokenMalformed AuditErrorCode = "token_malformed"
	auditErrTokenCreation  AuditErrorCode = "token_creation"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (m *TokenManager) emitAudit(ctx context.Context, eventType string, success bool, claims *Claims, err error) {
	if m == nil || m.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: m.now().UTC(),
		EventType: eventType,
		RequestID: RequestIDFromContext(ctx),
		IP:        ClientIPFromContext(ctx),
		Success:   success,
	}
	if claims != nil {
		event.Subject = claims.Subject
		event.Kind = string(claims.Kind)
		event.TokenID = claims.TokenID
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenRevoked):
		return auditErrTokenRevoked
	case errors.Is(err, ErrTokenMalformed):
		return auditErrTokenMalformed
	case errors.Is(err, ErrTokenCreation):
		return auditErrTokenCreation
	case errors.Is(err, ErrRevocationUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
