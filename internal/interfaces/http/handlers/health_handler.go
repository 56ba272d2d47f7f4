package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
)

// Pinger is any dependency with a health probe.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	deps   map[string]Pinger
	logger logging.Logger
}

// NewHealthHandler builds a HealthHandler over named dependencies.  A nil or
// empty map means readiness reduces to liveness.
func NewHealthHandler(deps map[string]Pinger, logger logging.Logger) *HealthHandler {
	return &HealthHandler{deps: deps, logger: logger}
}

// Liveness always reports ok while the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness probes every dependency and reports per-dependency status.  Any
// failing dependency turns the response into a 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	statuses := make(map[string]string, len(h.deps))
	healthy := true

	for name, dep := range h.deps {
		if err := dep.HealthCheck(c.Request.Context()); err != nil {
			statuses[name] = err.Error()
			healthy = false
			h.logger.Warn("readiness probe failed", logging.String("dependency", name), logging.Err(err))
			continue
		}
		statuses[name] = "ok"
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "dependencies": statuses})
}
