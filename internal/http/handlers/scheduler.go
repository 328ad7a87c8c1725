package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cementplant-backend/internal/http/response"
	"github.com/yungbote/cementplant-backend/internal/scheduler"
)

type JobRunner interface {
	Status() []scheduler.JobStatus
	TriggerNow(name string) error
}

type SchedulerHandler struct {
	jobs JobRunner
}

func NewSchedulerHandler(jobs JobRunner) *SchedulerHandler {
	return &SchedulerHandler{jobs: jobs}
}

// GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(c *gin.Context) {
	response.RespondOK(c, gin.H{"jobs": h.jobs.Status()})
}

// POST /api/scheduler/jobs/:name/run
func (h *SchedulerHandler) RunJob(c *gin.Context) {
	name := c.Param("name")
	err := h.jobs.TriggerNow(name)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"job": name, "triggered": true})
	case errors.Is(err, scheduler.ErrUnknownJob):
		response.RespondError(c, http.StatusNotFound, "unknown_job", err)
	case errors.Is(err, scheduler.ErrStopped), errors.Is(err, context.Canceled):
		response.RespondError(c, http.StatusServiceUnavailable, "scheduler_stopped", err)
	default:
		response.RespondErr(c, "trigger_failed", err)
	}
}
