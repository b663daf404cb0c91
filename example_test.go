package goJobs_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
)

func newExampleManager() *goJobs.TokenManager {
	cfg := goJobs.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("example-secret-example-secret-32")
	cfg.Audit.Enabled = false

	tm, err := goJobs.New().WithConfig(cfg).Build()
	if err != nil {
		panic(err)
	}
	return tm
}

// ExampleTokenManager_Verify shows the issue, verify and revoke cycle.
func ExampleTokenManager_Verify() {
	tm := newExampleManager()
	defer tm.Close()
	ctx := context.Background()

	pair, _ := tm.IssueAccessAndRefresh(ctx, "64f1c0de0000000000000001", "Employer")
	claims, err := tm.Verify(ctx, pair.AccessToken)
	fmt.Println(claims.Role, claims.Kind, err)

	_ = tm.RevokeRemaining(ctx, pair.AccessToken)
	_, err = tm.Verify(ctx, pair.AccessToken)
	fmt.Println(errors.Is(err, goJobs.ErrTokenRevoked))
	// Output:
	// employer access <nil>
	// true
}

// ExampleTokenManager_VerifyKind shows that a token is only accepted for its own purpose.
func ExampleTokenManager_VerifyKind() {
	tm := newExampleManager()
	defer tm.Close()
	ctx := context.Background()

	reset, _ := tm.IssuePasswordResetToken(ctx, "64f1c0de0000000000000001")
	_, err := tm.VerifyKind(ctx, reset, goJobs.KindAccess)
	fmt.Println(errors.Is(err, goJobs.ErrTokenWrongKind), errors.Is(err, goJobs.ErrTokenMalformed))

	_, err = tm.VerifyKind(ctx, reset, goJobs.KindReset)
	fmt.Println(err)
	// Output:
	// true true
	// <nil>
}

// ExampleTokenManager_Revoke shows that a non-positive ttl records nothing.
func ExampleTokenManager_Revoke() {
	tm := newExampleManager()
	defer tm.Close()
	ctx := context.Background()

	pair, _ := tm.IssueAccessAndRefresh(ctx, "64f1c0de0000000000000001", goJobs.RoleJobseeker)
	_ = tm.Revoke(ctx, pair.RefreshToken, 0)
	revoked, _ := tm.IsRevoked(ctx, pair.RefreshToken)
	fmt.Println(revoked)

	_ = tm.Revoke(ctx, pair.RefreshToken, time.Minute)
	revoked, _ = tm.IsRevoked(ctx, pair.RefreshToken)
	fmt.Println(revoked)
	// Output:
	// false
	// true
}
