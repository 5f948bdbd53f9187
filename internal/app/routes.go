package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xuanlung-gov/tthc-assistant/internal/buildinfo"
	"github.com/xuanlung-gov/tthc-assistant/internal/feed"
)

func (a *Application) serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "tthc-assistant",
		"build":   buildinfo.Get(),
		"commune": a.cfg.CommuneName,
		"chat":    ChatPath,
	})
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) feedStatuses() []feed.Status {
	out := make([]feed.Status, 0, len(a.feeds))
	for _, f := range a.feeds {
		out = append(out, f.Status())
	}
	return out
}

// readinessCheck reports 503 until the startup preload finished or timed
// out. Feed problems never make the service unready: a missing or broken
// feed only degrades answers to the no-data reply.
func (a *Application) readinessCheck(c *gin.Context) {
	if !a.readinessState.IsReady() {
		status := a.readinessState.Status()
		a.logger.WithField("elapsed_seconds", status.ElapsedSeconds).
			WithField("timeout_seconds", status.TimeoutSeconds).
			Debug("Readiness check: preload in progress")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": status.Reason,
			"progress": gin.H{
				"elapsed_seconds": status.ElapsedSeconds,
				"timeout_seconds": status.TimeoutSeconds,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"readiness": a.readinessState.Status(),
		"feeds":     a.feedStatuses(),
	})
}
