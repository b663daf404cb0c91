package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "auth_claims"
	tokenKey  = "auth_token"
)

// Verifier is the subset of *goJobs.TokenManager the guard needs.
type Verifier interface {
	VerifyKind(ctx context.Context, token string, kind goJobs.TokenKind) (*goJobs.Claims, error)
}

// Guard requires a bearer access token and stores its claims in the gin context.
// Expired, revoked and malformed tokens get distinct codes so clients can tell a
// refresh-worthy expiry from a forced logout.
func Guard(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			Abort(c, http.StatusUnauthorized, "unauthorized", "authentication unavailable")
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Abort(c, http.StatusUnauthorized, "unauthorized", "bearer token required")
			return
		}

		claims, err := v.VerifyKind(c.Request.Context(), token, goJobs.KindAccess)
		if err != nil {
			status, code, msg := TokenErrorStatus(err)
			Abort(c, status, code, msg)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// TokenErrorStatus maps TokenManager failures to an HTTP status, code and message.
func TokenErrorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, goJobs.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", "token expired"
	case errors.Is(err, goJobs.ErrTokenRevoked):
		return http.StatusUnauthorized, "token_revoked", "token revoked"
	case errors.Is(err, goJobs.ErrTokenWrongKind):
		return http.StatusUnauthorized, "token_wrong_kind", "token not valid for this operation"
	case errors.Is(err, goJobs.ErrTokenMalformed):
		return http.StatusUnauthorized, "token_invalid", "invalid token"
	case errors.Is(err, goJobs.ErrRevocationUnavailable):
		return http.StatusServiceUnavailable, "auth_unavailable", "authentication temporarily unavailable"
	default:
		return http.StatusUnauthorized, "unauthorized", "unauthorized"
	}
}

// ClaimsFromContext returns the claims stored by Guard.
func ClaimsFromContext(c *gin.Context) (*goJobs.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*goJobs.Claims)
	return claims, ok && claims != nil
}

// TokenFromContext returns the raw access token accepted by Guard.
func TokenFromContext(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func bearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
