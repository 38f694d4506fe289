package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandakumarbm26/Products-RestAPI/pkg/response"
)

// Health returns a simple status payload used when the health manager is disabled.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
