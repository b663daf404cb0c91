package httpapi

import (
	"errors"
	"net/http"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/MrEthical07/goJobs/internal/accounts"
	"github.com/MrEthical07/goJobs/internal/jobs"
	"github.com/MrEthical07/goJobs/middleware"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func okMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: true, Message: msg})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: ErrInvalidRegistration wraps ErrAccountInvalid.
var errorTable = []errorMapping{
	{goJobs.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid email or password"},
	{goJobs.ErrAccountExists, http.StatusConflict, "account_exists", "an account with this email already exists"},
	{goJobs.ErrAccountRoleInvalid, http.StatusBadRequest, "invalid_role", "role must be jobseeker or employer"},
	{goJobs.ErrPasswordPolicy, http.StatusBadRequest, "weak_password", "password must be between 8 and 72 bytes"},
	{accounts.ErrInvalidRegistration, http.StatusBadRequest, "invalid_request", "name and a valid email are required"},
	{goJobs.ErrAccountInvalid, http.StatusBadRequest, "invalid_request", "invalid request"},
	{goJobs.ErrUserNotFound, http.StatusNotFound, "user_not_found", "user not found"},
	{accounts.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "too many attempts, try again later"},
	{jobs.ErrJobNotFound, http.StatusNotFound, "job_not_found", "job not found"},
	{jobs.ErrAlreadyApplied, http.StatusConflict, "already_applied", "you have already applied to this job"},
	{jobs.ErrJobClosed, http.StatusConflict, "job_closed", "job is no longer accepting applications"},
	{jobs.ErrForbidden, http.StatusForbidden, "forbidden", "not allowed"},
	{jobs.ErrInvalidJob, http.StatusBadRequest, "invalid_job", ""},
}

var tokenErrors = []error{
	goJobs.ErrTokenExpired,
	goJobs.ErrTokenRevoked,
	goJobs.ErrTokenMalformed,
	goJobs.ErrRevocationUnavailable,
}

// fail writes the response for err. Unmapped errors are logged and reported as 500.
func (h *handler) fail(c *gin.Context, err error) {
	for _, target := range tokenErrors {
		if errors.Is(err, target) {
			status, code, msg := middleware.TokenErrorStatus(err)
			middleware.Abort(c, status, code, msg)
			return
		}
	}

	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			middleware.Abort(c, m.status, m.code, msg)
			return
		}
	}

	h.log.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("request failed")
	middleware.Abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

func badBody(c *gin.Context, err error) {
	middleware.Abort(c, http.StatusBadRequest, "invalid_body", err.Error())
}
