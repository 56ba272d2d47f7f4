// Package http assembles the service's HTTP API.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/internal/interfaces/http/handlers"
)

// RouterConfig aggregates the handler dependencies for the route tree.
type RouterConfig struct {
	Mode string // gin mode: "debug" | "release" | "test"

	HealthHandler *handlers.HealthHandler
	RecordHandler *handlers.RecordHandler
	SyncHandler   *handlers.SyncHandler

	Logger logging.Logger
}

// NewRouter builds the full route tree: public probes and metrics at the
// root, data endpoints under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Logger != nil {
		router.Use(requestLogger(cfg.Logger))
	}

	if cfg.HealthHandler != nil {
		router.GET("/healthz", cfg.HealthHandler.Liveness)
		router.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		if cfg.RecordHandler != nil {
			v1.GET("/records", cfg.RecordHandler.List)
			v1.GET("/records/:id", cfg.RecordHandler.Get)
		}
		if cfg.SyncHandler != nil {
			v1.POST("/sync/:year", cfg.SyncHandler.Enqueue)
			v1.GET("/stats", cfg.SyncHandler.Stats)
		}
	}

	return router
}

// requestLogger emits one structured line per request.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}
