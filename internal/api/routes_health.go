package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandakumarbm26/Products-RestAPI/internal/app"
	"github.com/nandakumarbm26/Products-RestAPI/internal/handlers"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	if cfg == nil {
		return
	}

	if !cfg.Monitoring.Health.Enabled {
		r.GET("/health", disabledHealthHandler)
		r.GET("/health/live", disabledHealthHandler)
		r.GET("/health/ready", disabledHealthHandler)
		return
	}

	if mon == nil || mon.Health() == nil {
		r.GET("/health", handlers.Health())
		return
	}

	registerHealthEndpoints(r, mon.Health())
}

func registerHealthEndpoints(router gin.IRouter, manager *monitoring.HealthManager) {
	router.GET("/health", func(c *gin.Context) {
		report := manager.EvaluateReadiness(c.Request.Context())
		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"checked_at": time.Now().UTC(),
		})
	})

	router.GET("/health/live", func(c *gin.Context) {
		report := manager.EvaluateLiveness(c.Request.Context())
		writeHealthReport(c, report)
	})

	router.GET("/health/ready", func(c *gin.Context) {
		report := manager.EvaluateReadiness(c.Request.Context())
		writeHealthReport(c, report)
	})
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}

func writeHealthReport(c *gin.Context, report monitoring.HealthReport) {
	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": time.Now().UTC(),
	})
}
