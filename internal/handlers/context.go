package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nandakumarbm26/Products-RestAPI/internal/requestctx"
)

// catalogContext returns the context catalog calls run under. Requests that did not pass the
// request ID middleware still carry the caller's address and agent for log correlation.
func catalogContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	ctx := c.Request.Context()
	if _, ok := requestctx.FromContext(ctx); ok {
		return ctx
	}
	return requestctx.WithInfo(ctx, requestctx.Info{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}
