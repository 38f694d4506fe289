package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	ResultHit    = "hit"
	ResultMiss   = "miss"
	ResultError  = "error"
	ResultBypass = "bypass"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "products_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// CacheLookups counts cache reads by catalog operation and result (hit|miss|error|bypass).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_cache_lookups_total",
			Help: "Total number of product cache lookups",
		},
		[]string{"operation", "result"},
	)

	// CacheWrites counts cache population attempts by result (success|failure).
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_cache_writes_total",
			Help: "Total number of product cache writes",
		},
		[]string{"operation", "result"},
	)

	// CacheInvalidations counts invalidation passes triggered by mutations.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_cache_invalidations_total",
			Help: "Total number of product cache invalidations",
		},
		[]string{"operation", "result"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "products_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
