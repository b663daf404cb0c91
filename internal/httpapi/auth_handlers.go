package httpapi

import (
	"net/http"

	"github.com/MrEthical07/goJobs/internal/accounts"
	"github.com/MrEthical07/goJobs/middleware"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) register(c *gin.Context) {
	var req accounts.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	res, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, res)
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (h *handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	res, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (h *handler) logout(c *gin.Context) {
	var req logoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badBody(c, err)
			return
		}
	}
	if err := h.accounts.Logout(c.Request.Context(), middleware.TokenFromContext(c), req.RefreshToken); err != nil {
		h.fail(c, err)
		return
	}
	okMessage(c, http.StatusOK, "logged out")
}

// forgotPassword answers 202 whether or not the email is registered.
func (h *handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	okMessage(c, http.StatusAccepted, "if the address is registered, a reset link has been sent")
}

func (h *handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	if err := h.accounts.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	okMessage(c, http.StatusOK, "password updated")
}

func (h *handler) verifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		middleware.Abort(c, http.StatusBadRequest, "invalid_request", "token query parameter is required")
		return
	}
	if err := h.accounts.VerifyEmail(c.Request.Context(), token); err != nil {
		h.fail(c, err)
		return
	}
	okMessage(c, http.StatusOK, "email verified")
}

func (h *handler) resendVerification(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	if err := h.accounts.RequestEmailVerification(c.Request.Context(), claims.Subject); err != nil {
		h.fail(c, err)
		return
	}
	okMessage(c, http.StatusAccepted, "verification email sent")
}

func (h *handler) me(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	u, err := h.accounts.Me(c.Request.Context(), claims.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
