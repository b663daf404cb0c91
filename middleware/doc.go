// Package middleware holds the gin middleware shared by every route: request ids,
// structured access logging, bearer-token guards and role checks.
//
// Guards delegate every decision to a [Verifier] (in production a
// *goJobs.TokenManager). They never parse tokens themselves.
package middleware
