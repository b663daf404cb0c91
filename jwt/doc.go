// Package jwt signs and parses the job board's purpose-tagged tokens (access, refresh,
// password reset, email verification) with configured keys and strict validation.
//
// The package knows nothing about revocation; that lives in package revocation and is
// composed by the root TokenManager.
package jwt
