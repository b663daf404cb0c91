// Package httpapi exposes the account and job endpoints over gin.
package httpapi

import (
	"context"
	"net/http"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/MrEthical07/goJobs/internal/accounts"
	"github.com/MrEthical07/goJobs/internal/jobs"
	"github.com/MrEthical07/goJobs/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps are the services the router mounts.
type Deps struct {
	Tokens   middleware.Verifier
	Accounts *accounts.Service
	Jobs     *jobs.Service

	// Metrics is mounted at GET /metrics when set.
	Metrics http.Handler
	// Ready is called by GET /health; an error reports 503.
	Ready func(ctx context.Context) error

	CORSOrigins []string
	Log         logrus.FieldLogger
}

type handler struct {
	accounts *accounts.Service
	jobs     *jobs.Service
	log      logrus.FieldLogger
}

// NewRouter builds the gin engine with request ids, access logging, panic
// recovery and CORS in front of every route.
func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &handler{accounts: d.Accounts, jobs: d.Jobs, log: log.WithField("component", "httpapi")}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), cors.New(corsConfig(d.CORSOrigins)))
	if err := r.SetTrustedProxies(nil); err != nil {
		h.log.WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, http.StatusNotFound, "not_found", "route not found")
	})

	r.GET("/health", healthHandler(d.Ready))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	guard := middleware.Guard(d.Tokens)
	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", guard, h.logout)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/reset-password", h.resetPassword)
		auth.GET("/verify-email", h.verifyEmail)
		auth.POST("/verify-email/resend", guard, h.resendVerification)
		auth.GET("/me", guard, h.me)
	}

	jobRoutes := api.Group("/jobs")
	{
		jobRoutes.GET("", h.searchJobs)
		jobRoutes.GET("/:id", h.getJob)
		jobRoutes.POST("", guard, middleware.RequireRole(goJobs.RoleEmployer), h.createJob)
		jobRoutes.POST("/:id/apply", guard, middleware.RequireRole(goJobs.RoleJobseeker), h.apply)
		jobRoutes.GET("/:id/applications", guard, middleware.RequireRole(goJobs.RoleEmployer), h.listApplications)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	all := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			all = true
		}
	}
	if all {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func healthHandler(ready func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
