package obs

import (
	"context"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency is ready to serve.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers exposes liveness and readiness probes.
type HealthHandlers struct {
	Checks map[string]ReadinessCheck
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	failures := gin.H{}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failures": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
