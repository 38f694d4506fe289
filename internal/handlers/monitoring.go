package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nandakumarbm26/Products-RestAPI/internal/app"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/response"
)

// MonitoringHandler surfaces cache and maintenance summaries for operators.
type MonitoringHandler struct {
	module *monitoring.Module
	cfg    *app.Config
}

// NewMonitoringHandler constructs a monitoring handler. Returns nil when monitoring is disabled.
func NewMonitoringHandler(module *monitoring.Module, cfg *app.Config) *MonitoringHandler {
	if module == nil || cfg == nil {
		return nil
	}
	if !cfg.Monitoring.Health.Enabled && !cfg.Monitoring.Prometheus.Enabled {
		return nil
	}
	return &MonitoringHandler{module: module, cfg: cfg}
}

// Summary returns aggregated monitoring statistics and configuration hints.
func (h *MonitoringHandler) Summary(c *gin.Context) {
	snapshot := monitoring.Snapshot()
	endpoint := strings.TrimSpace(h.cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = "/metrics"
	}

	response.Success(c, http.StatusOK, gin.H{
		"summary": snapshot,
		"cache": gin.H{
			"backend":   h.cfg.Cache.ProductBackend(),
			"ttl":       h.cfg.Cache.Products.TTL.String(),
			"fail_open": h.cfg.Cache.Products.FailOpen,
		},
		"prometheus": gin.H{
			"enabled":  h.cfg.Monitoring.Prometheus.Enabled,
			"endpoint": endpoint,
		},
	})
}
