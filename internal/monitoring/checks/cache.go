package checks

import (
	"context"
	"errors"
	"time"

	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
)

const defaultCacheTimeout = 500 * time.Millisecond

// Cache returns an optional probe for the product cache. An unconfigured cache reports up
// because the catalog serves straight from storage without one.
func Cache(store cache.Store, timeout time.Duration) monitoring.Check {
	if timeout <= 0 {
		timeout = defaultCacheTimeout
	}
	return monitoring.NewOptionalCheck("cache", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if store == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "cache disabled",
				Duration: time.Since(start),
			}
		}

		if !cache.Reachable(store) {
			monitoring.SetCacheReachable(false)
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "circuit open",
				Duration: time.Since(start),
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := cache.Ping(probeCtx, store)
		if errors.Is(err, cache.ErrNotConfigured) {
			err = nil
		}
		monitoring.SetCacheReachable(err == nil)
		return monitoring.ResultFromError("cache", err, time.Since(start))
	})
}
