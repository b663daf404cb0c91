package middleware

import (
	"net/http"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/gin-gonic/gin"
)

// RequireRole allows the request only when Guard stored claims with one of roles.
// Mount it after Guard.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[goJobs.NormalizeRole(r)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			Abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if _, ok := allowed[goJobs.NormalizeRole(claims.Role)]; !ok {
			Abort(c, http.StatusForbidden, "forbidden", "role not permitted")
			return
		}
		c.Next()
	}
}
