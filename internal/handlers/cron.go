package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// Jobs are the scheduled jobs triggered by the external cron; *service.DigestService implements it.
type Jobs interface {
	Daily(ctx context.Context) (service.DigestReport, error)
	Weekly(ctx context.Context) (service.DigestReport, error)
	ArchiveCompleted(ctx context.Context) ([]dom.TaskRef, error)
	Reminders(ctx context.Context) (service.ReminderReport, error)
}

type CronHandler struct {
	jobs Jobs
}

func NewCronHandler(jobs Jobs) *CronHandler {
	return &CronHandler{jobs: jobs}
}

// DailyDigest godoc
// @Summary      Send the daily digest to every workspace
// @Tags         cron
// @Produce      json
// @Security     CronSecret
// @Success      200  {object}  service.DigestReport
// @Failure      401  {object}  map[string]string
// @Router       /cron/daily-digest [post]
func (h *CronHandler) DailyDigest(c *gin.Context) {
	report, err := h.jobs.Daily(c.Request.Context())
	if err != nil {
		writeError(c, err, "daily digest failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

// WeeklyDigest godoc
// @Summary      Send the weekly digest to every workspace
// @Tags         cron
// @Produce      json
// @Security     CronSecret
// @Success      200  {object}  service.DigestReport
// @Failure      401  {object}  map[string]string
// @Router       /cron/weekly-digest [post]
func (h *CronHandler) WeeklyDigest(c *gin.Context) {
	report, err := h.jobs.Weekly(c.Request.Context())
	if err != nil {
		writeError(c, err, "weekly digest failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ArchiveTasks godoc
// @Summary      Archive tasks completed more than 12 hours ago
// @Tags         cron
// @Produce      json
// @Security     CronSecret
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /cron/archive-tasks [post]
func (h *CronHandler) ArchiveTasks(c *gin.Context) {
	archived, err := h.jobs.ArchiveCompleted(c.Request.Context())
	if err != nil {
		writeError(c, err, "archiving failed")
		return
	}
	if archived == nil {
		archived = []dom.TaskRef{}
	}
	c.JSON(http.StatusOK, gin.H{"archived": len(archived), "tasks": archived})
}

// Reminders godoc
// @Summary      Remind assignees of tasks due within a day and owners of close deadlines
// @Tags         cron
// @Produce      json
// @Security     CronSecret
// @Success      200  {object}  service.ReminderReport
// @Failure      401  {object}  map[string]string
// @Router       /cron/reminders [post]
func (h *CronHandler) Reminders(c *gin.Context) {
	report, err := h.jobs.Reminders(c.Request.Context())
	if err != nil {
		writeError(c, err, "reminders failed")
		return
	}
	c.JSON(http.StatusOK, report)
}
