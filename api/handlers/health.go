package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/interfaces"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status returns scheduler state and the last pipeline run
func Status(processor interfaces.EmailProcessor, scheduler interfaces.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := dto.ServiceStatus{
			Status:  "ok",
			Running: processor.IsRunning(),
			LastRun: processor.Status(),
		}

		if scheduler != nil && scheduler.IsScheduled() {
			status.Scheduled = true
			status.IntervalSeconds = int64(scheduler.Interval().Seconds())
			if next := scheduler.NextRun(); !next.IsZero() {
				status.NextRun = &next
			}
		}

		c.JSON(http.StatusOK, status)
	}
}
