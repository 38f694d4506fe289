package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
)

func newRateLimitedRouter(opts RateLimitOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(opts))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func doGet(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRateLimitedRouter(RateLimitOptions{Requests: 2, Window: 100 * time.Millisecond})

	for i := 0; i < 2; i++ {
		w := doGet(r, "/ping")
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, "2", doGet(r, "/ping").Header().Get("X-RateLimit-Limit"))

	w := doGet(r, "/ping")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	time.Sleep(120 * time.Millisecond)

	require.Equal(t, http.StatusOK, doGet(r, "/ping").Code)
}

func TestRateLimitDisabled(t *testing.T) {
	r := newRateLimitedRouter(RateLimitOptions{})

	for i := 0; i < 5; i++ {
		w := doGet(r, "/ping")
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitUsesSharedStore(t *testing.T) {
	shared := cache.NewMemoryStore()
	first := newRateLimitedRouter(RateLimitOptions{Requests: 1, Window: time.Minute, Store: NewCacheRateStore(shared)})
	second := newRateLimitedRouter(RateLimitOptions{Requests: 1, Window: time.Minute, Store: NewCacheRateStore(shared)})

	require.Equal(t, http.StatusOK, doGet(first, "/ping").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(second, "/ping").Code)
}

type brokenRateStore struct{ calls int }

func (s *brokenRateStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	s.calls++
	return 0, 0, errors.New("connection refused")
}

func TestRateLimitFallsBackToMemory(t *testing.T) {
	broken := &brokenRateStore{}
	r := newRateLimitedRouter(RateLimitOptions{Requests: 1, Window: time.Minute, Store: broken})

	require.Equal(t, http.StatusOK, doGet(r, "/ping").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r, "/ping").Code)
	require.Equal(t, 2, broken.calls)
}

func TestCacheRateStoreNil(t *testing.T) {
	require.Nil(t, NewCacheRateStore(nil))
}
