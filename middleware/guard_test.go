package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	claims *goJobs.Claims
	err    error
	token  string
	kind   goJobs.TokenKind
}

func (f *fakeVerifier) VerifyKind(_ context.Context, token string, kind goJobs.TokenKind) (*goJobs.Claims, error) {
	f.token = token
	f.kind = kind
	return f.claims, f.err
}

func newGuardedRouter(v Verifier, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	handlers := append([]gin.HandlerFunc{Guard(v)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	r.GET("/private", handlers...)
	return r
}

func doGet(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGuardAcceptsAccessToken(t *testing.T) {
	v := &fakeVerifier{claims: &goJobs.Claims{Subject: "u1", Role: "employer", Kind: goJobs.KindAccess}}
	rec := doGet(newGuardedRouter(v), "Bearer abc.def.ghi")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc.def.ghi", v.token)
	assert.Equal(t, goJobs.KindAccess, v.kind)
	assert.Contains(t, rec.Body.String(), `"subject":"u1"`)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestGuardRejectsMissingBearer(t *testing.T) {
	v := &fakeVerifier{}
	for _, header := range []string{"", "Basic xyz", "Bearer   "} {
		rec := doGet(newGuardedRouter(v), header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
	}
}

func TestGuardDistinguishesTokenFailures(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{goJobs.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{goJobs.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked"},
		{goJobs.ErrTokenMalformed, http.StatusUnauthorized, "token_invalid"},
		{goJobs.ErrTokenWrongKind, http.StatusUnauthorized, "token_wrong_kind"},
		{goJobs.ErrRevocationUnavailable, http.StatusServiceUnavailable, "auth_unavailable"},
	}
	for _, tc := range cases {
		rec := doGet(newGuardedRouter(&fakeVerifier{err: tc.err}), "Bearer t")
		assert.Equal(t, tc.status, rec.Code, tc.code)
		body := decodeError(t, rec)
		assert.Equal(t, tc.code, body.Code)
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.RequestID)
	}
}

func TestRequireRole(t *testing.T) {
	employer := &fakeVerifier{claims: &goJobs.Claims{Subject: "u1", Role: "employer", Kind: goJobs.KindAccess}}
	seeker := &fakeVerifier{claims: &goJobs.Claims{Subject: "u2", Role: "jobseeker", Kind: goJobs.KindAccess}}

	rec := doGet(newGuardedRouter(employer, RequireRole("Employer")), "Bearer t")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(newGuardedRouter(seeker, RequireRole("employer")), "Bearer t")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Code)
}

func TestRequestIDReusesInboundHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, goJobs.RequestIDFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rec.Body.String())
}
