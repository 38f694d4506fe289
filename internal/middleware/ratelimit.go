package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/nandakumarbm26/Products-RestAPI/pkg/errors"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/logger"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/metrics"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/response"
)

const (
	defaultRateLimitTimeout = 250 * time.Millisecond
	rateLimitKeyPrefix      = "ratelimit:"
)

// RateLimitOptions configures the fixed-window limiter.
type RateLimitOptions struct {
	Requests int
	Window   time.Duration
	// Store holds the counters. Nil keeps them in process memory.
	Store RateStore
	// Timeout bounds each counter update.
	Timeout time.Duration
}

// RateLimit returns a middleware that limits requests per (clientIP, route) within a fixed window.
// When the shared store fails, counting continues in process memory for that request.
func RateLimit(opts RateLimitOptions) gin.HandlerFunc {
	if opts.Requests <= 0 || opts.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRateLimitTimeout
	}

	local := NewMemoryRateStore()
	store := local
	if opts.Store != nil {
		log := logger.WithModule("http")
		store = &fallbackRateStore{
			primary:  opts.Store,
			fallback: local,
			onError: func(err error) {
				log.Debug("rate limit store unavailable, counting locally", zap.Error(err))
			},
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := rateLimitKeyPrefix + c.ClientIP() + "|" + c.Request.Method + " " + route

		ctx, cancel := context.WithTimeout(c.Request.Context(), opts.Timeout)
		count, ttl, err := store.Increment(ctx, key, opts.Window)
		cancel()
		if err != nil {
			// both stores failed; let the request through
			c.Next()
			return
		}

		remaining := opts.Requests - count
		if remaining < 0 {
			remaining = 0
		}
		if ttl <= 0 {
			ttl = opts.Window
		}
		resetIn := int((ttl + time.Second - 1) / time.Second)

		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetIn))

		if count > opts.Requests {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", strconv.Itoa(resetIn))
			response.Abort(c, appErrors.ErrRateLimit)
			return
		}

		c.Next()
	}
}
