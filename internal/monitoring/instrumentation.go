package monitoring

import (
	"strings"
	"time"

	"github.com/nandakumarbm26/Products-RestAPI/pkg/metrics"
)

// RecordCacheLookup counts a catalog cache read by operation and result (hit|miss|error|bypass).
func RecordCacheLookup(operation, result string) {
	operation = normalizeLabel(operation)
	result = normalizeLabel(result)
	metrics.CacheLookups.WithLabelValues(operation, result).Inc()

	if module := CurrentModule(); module != nil {
		module.stats.recordCacheLookup(result)
	}
}

// RecordCacheWrite counts a cache population attempt by result (success|failure).
func RecordCacheWrite(operation, result string) {
	metrics.CacheWrites.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// RecordCacheInvalidation counts an invalidation pass by result (success|failure|bypass).
func RecordCacheInvalidation(operation, result string) {
	result = normalizeLabel(result)
	metrics.CacheInvalidations.WithLabelValues(normalizeLabel(operation), result).Inc()

	if module := CurrentModule(); module != nil && result == "success" {
		module.stats.cacheInvalidations.Add(1)
	}
}

// SetCacheReachable publishes the cache breaker state.
func SetCacheReachable(reachable bool) {
	module := CurrentModule()
	if module == nil {
		return
	}
	module.stats.cacheReachable.Store(reachable)
	if reachable {
		module.metrics.cacheReachable.Set(1)
	} else {
		module.metrics.cacheReachable.Set(0)
	}
}

// RecordMaintenanceRun records the completion of a maintenance job.
func RecordMaintenanceRun(job, result, message string, removed int64, duration time.Duration) {
	module := CurrentModule()
	if module == nil {
		return
	}
	jobID := normalizeLabel(job)
	result = normalizeLabel(result)

	module.metrics.maintenanceRuns.WithLabelValues(jobID, result).Inc()
	observeDuration(module.metrics.maintenanceDuration.WithLabelValues(jobID), duration)
	if result == "success" {
		module.metrics.maintenanceLastRun.WithLabelValues(jobID).Set(float64(time.Now().Unix()))
		if removed > 0 {
			module.metrics.maintenanceRemoved.WithLabelValues(jobID).Add(float64(removed))
		}
	}
	module.stats.maintenanceEntry(jobID).record(result, strings.TrimSpace(message), removed, duration)
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
