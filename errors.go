package goJobs

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goJobs/query"
)

var (
	// ErrTokenExpired is returned by Verify for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers bad signatures, structure, algorithm, issuer and audience.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenRevoked is returned by Verify for a token on the revocation list.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrTokenCreation is returned when a token cannot be issued, e.g. blank subject.
	ErrTokenCreation = errors.New("token creation failed")
	// ErrTokenWrongKind is a malformed-class failure: a valid token used for the wrong purpose.
	ErrTokenWrongKind = fmt.Errorf("%w: wrong token kind", ErrTokenMalformed)
	// ErrRevocationUnavailable wraps failures of the external revocation store.
	ErrRevocationUnavailable = errors.New("revocation backend unavailable")
	// ErrRevocationDegraded accompanies ErrRevocationUnavailable when the entry was kept in
	// process memory instead.
	ErrRevocationDegraded = errors.New("revocation recorded in process memory only")
	// ErrManagerNotReady is returned by token operations on a nil TokenManager or one that
	// has been closed.
	ErrManagerNotReady = errors.New("token manager not ready")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountRoleInvalid = errors.New("invalid account role")
	ErrAccountInvalid     = errors.New("invalid account request")
	ErrPasswordPolicy     = errors.New("password policy violation")

	// ErrQueryParamInvalid is never returned to HTTP callers; see query.ParamIssue.
	ErrQueryParamInvalid = query.ErrQueryParamInvalid
)
