package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) HealthCheck(ctx context.Context) error { return f.err }

func newHealthRouter(deps map[string]Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(deps, logging.NewNopLogger())
	router := gin.New()
	router.GET("/healthz", handler.Liveness)
	router.GET("/readyz", handler.Readiness)
	return router
}

func TestHealthHandler_Liveness(t *testing.T) {
	router := newHealthRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_Readiness_AllHealthy(t *testing.T) {
	router := newHealthRouter(map[string]Pinger{
		"postgres": &fakePinger{},
		"redis":    &fakePinger{},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
}

func TestHealthHandler_Readiness_Degraded(t *testing.T) {
	router := newHealthRouter(map[string]Pinger{
		"postgres": &fakePinger{},
		"redis":    &fakePinger{err: assert.AnError},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}
