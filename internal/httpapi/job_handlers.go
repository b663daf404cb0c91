package httpapi

import (
	"net/http"

	"github.com/MrEthical07/goJobs/internal/jobs"
	"github.com/MrEthical07/goJobs/middleware"
	"github.com/MrEthical07/goJobs/query"
	"github.com/gin-gonic/gin"
)

func actorFrom(c *gin.Context) jobs.Actor {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return jobs.Actor{}
	}
	return jobs.Actor{ID: claims.Subject, Role: claims.Role}
}

func (h *handler) searchJobs(c *gin.Context) {
	page, err := h.jobs.Search(c.Request.Context(), query.FromValues(c.Request.URL.Query()))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

func (h *handler) getJob(c *gin.Context) {
	j, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, j)
}

func (h *handler) createJob(c *gin.Context) {
	var req jobs.JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	j, err := h.jobs.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, j)
}

func (h *handler) apply(c *gin.Context) {
	var req jobs.ApplicationInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badBody(c, err)
			return
		}
	}
	a, err := h.jobs.Apply(c.Request.Context(), c.Param("id"), actorFrom(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, a)
}

func (h *handler) listApplications(c *gin.Context) {
	apps, err := h.jobs.ListApplications(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, apps)
}
