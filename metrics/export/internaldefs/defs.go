package internaldefs

import (
	goJobs "github.com/MrEthical07/goJobs"
)

// CounterDef maps a MetricID to its exported series name.
type CounterDef struct {
	ID   goJobs.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goJobs.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goJobs.MetricAccessIssued, Name: "gojobs_access_tokens_issued_total", Help: "Access tokens issued."},
	{ID: goJobs.MetricRefreshIssued, Name: "gojobs_refresh_tokens_issued_total", Help: "Refresh tokens issued."},
	{ID: goJobs.MetricResetIssued, Name: "gojobs_reset_tokens_issued_total", Help: "Password reset tokens issued."},
	{ID: goJobs.MetricEmailVerificationIssued, Name: "gojobs_email_verification_tokens_issued_total", Help: "Email verification tokens issued."},
	{ID: goJobs.MetricTokenIssueFailure, Name: "gojobs_token_issue_failure_total", Help: "Token issuance failures."},
	{ID: goJobs.MetricVerifySuccess, Name: "gojobs_verify_success_total", Help: "Successful token verifications."},
	{ID: goJobs.MetricVerifyExpired, Name: "gojobs_verify_expired_total", Help: "Verifications rejected as expired."},
	{ID: goJobs.MetricVerifyMalformed, Name: "gojobs_verify_malformed_total", Help: "Verifications rejected as malformed."},
	{ID: goJobs.MetricVerifyRevoked, Name: "gojobs_verify_revoked_total", Help: "Verifications rejected as revoked."},
	{ID: goJobs.MetricVerifyWrongKind, Name: "gojobs_verify_wrong_kind_total", Help: "Valid tokens presented for the wrong purpose."},
	{ID: goJobs.MetricRevokeSuccess, Name: "gojobs_revoke_success_total", Help: "Tokens added to the revocation list."},
	{ID: goJobs.MetricRevokeFailure, Name: "gojobs_revoke_failure_total", Help: "Revocations rejected by the revocation store."},
	{ID: goJobs.MetricRevokeDegraded, Name: "gojobs_revoke_degraded_total", Help: "Revocations kept in process memory after a store failure."},
	{ID: goJobs.MetricLoginSuccess, Name: "gojobs_login_success_total", Help: "Successful logins."},
	{ID: goJobs.MetricLoginFailure, Name: "gojobs_login_failure_total", Help: "Failed logins."},
	{ID: goJobs.MetricRegisterSuccess, Name: "gojobs_register_success_total", Help: "Accounts created."},
	{ID: goJobs.MetricRegisterDuplicate, Name: "gojobs_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: goJobs.MetricPasswordResetConfirm, Name: "gojobs_password_reset_confirm_total", Help: "Completed password resets."},
	{ID: goJobs.MetricEmailVerified, Name: "gojobs_email_verified_total", Help: "Completed email verifications."},
	{ID: goJobs.MetricQueryBuilt, Name: "gojobs_job_queries_built_total", Help: "Job listing queries built."},
	{ID: goJobs.MetricQueryParamDropped, Name: "gojobs_query_params_dropped_total", Help: "Query parameters dropped or defaulted."},
}

var HistogramDefs = []HistogramDef{
	{ID: goJobs.MetricVerifyLatency, Name: "gojobs_verify_latency_seconds", Help: "Token verification latency."},
}

// HistogramBounds are the upper bounds, in seconds, of the eight latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
