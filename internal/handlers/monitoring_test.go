package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nandakumarbm26/Products-RestAPI/internal/app"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
)

func TestMonitoringHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mod, err := monitoring.NewModule(monitoring.Options{})
	require.NoError(t, err)
	monitoring.SetModule(mod)

	monitoring.RecordCacheLookup("list", "hit")
	monitoring.RecordMaintenanceRun("cache_cleanup", "success", "", 4, 200*time.Millisecond)

	cfg := &app.Config{
		Cache: app.CacheConfig{
			Products: app.ProductsCacheConfig{Backend: app.BackendMemory, TTL: 10 * time.Minute},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	handler := NewMonitoringHandler(mod, cfg)
	require.NotNil(t, handler)

	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request, _ = http.NewRequest(http.MethodGet, "/monitoring/summary", nil)

	handler.Summary(ctx)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	require.Contains(t, body, "\"success\":true")
	require.Contains(t, body, "\"backend\":\"memory\"")
	require.Contains(t, body, "cache_cleanup")
}

func TestMonitoringHandlerDisabled(t *testing.T) {
	mod, err := monitoring.NewModule(monitoring.Options{})
	require.NoError(t, err)

	require.Nil(t, NewMonitoringHandler(mod, &app.Config{}))
	require.Nil(t, NewMonitoringHandler(nil, &app.Config{}))
}
