package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nandakumarbm26/Products-RestAPI/internal/handlers"
)

func registerProductRoutes(r gin.IRouter, handler *handlers.ProductHandler) {
	if r == nil || handler == nil {
		return
	}

	products := r.Group("/products")
	{
		products.POST("", handler.Create)
		products.GET("", handler.List)
		products.GET("/filter", handler.Filter)
		products.GET("/:id", handler.Get)
		products.PUT("/:id", handler.Update)
		products.DELETE("/:id", handler.Delete)
	}

	// The filter is also reachable at the top level.
	r.GET("/filter", handler.Filter)
}
