package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nandakumarbm26/Products-RestAPI/internal/handlers"
)

func registerMonitoringRoutes(r gin.IRouter, handler *handlers.MonitoringHandler) {
	if r == nil || handler == nil {
		return
	}

	group := r.Group("/monitoring")
	group.GET("/summary", handler.Summary)
}
