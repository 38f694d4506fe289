package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/nandakumarbm26/Products-RestAPI/pkg/errors"
)

// Response defines the base API envelope used for errors and operational endpoints.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo holds error details to send to clients.
type ErrorInfo struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a JSON success response wrapped in the envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// JSON writes the payload as-is. Resource endpoints return bare records and collections.
func JSON(c *gin.Context, statusCode int, payload interface{}) {
	c.JSON(statusCode, payload)
}

// NoContent writes an empty response with the supplied status.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if appErr.Internal != nil {
		_ = c.Error(appErr.Internal)
	}

	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Status:  status,
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
