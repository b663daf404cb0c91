// Package goJobs is the token lifecycle core of the job board backend: it issues,
// verifies and revokes access, refresh, password-reset and email-verification tokens.
//
// A [TokenManager] is assembled once at startup with [Builder] and shared by every
// handler. Revocation state lives either in Redis or in process memory; the choice is
// made in [Builder.Build] and never re-checked per call.
//
// # Errors
//
// Verification failures are always typed: [ErrTokenRevoked], [ErrTokenExpired] or
// [ErrTokenMalformed] (with [ErrTokenWrongKind] as a malformed-class refinement). A
// revocation backend that cannot be reached yields [ErrRevocationUnavailable]; a token is
// never treated as valid because the list could not be consulted.
//
// # Observability
//
// [Metrics] counts issuance, verification outcomes and revocations with atomic counters;
// metrics/export/prometheus renders them. Audit events are delivered asynchronously to an
// [AuditSink].
package goJobs
