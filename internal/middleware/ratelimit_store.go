package middleware

import (
	"context"
	"time"

	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
)

// RateStore coordinates rate limiting counters for a specific key.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// storeRateStore implements RateStore on top of any cache.Store.
type storeRateStore struct {
	store cache.Store
}

// NewMemoryRateStore constructs a process-local rate store.
func NewMemoryRateStore() RateStore {
	return &storeRateStore{store: cache.NewMemoryStore()}
}

// NewCacheRateStore shares counters through the configured cache backend so every
// instance sees the same window. Returns nil when store is nil.
func NewCacheRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return &storeRateStore{store: store}
}

func (s *storeRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	if !cache.Reachable(s.store) {
		return 0, 0, cache.ErrUnavailable
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}

// fallbackRateStore counts in primary and switches to the local store for a request
// whenever primary fails.
type fallbackRateStore struct {
	primary  RateStore
	fallback RateStore
	onError  func(error)
}

func (s *fallbackRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	count, ttl, err := s.primary.Increment(ctx, key, window)
	if err == nil {
		return count, ttl, nil
	}
	if s.onError != nil {
		s.onError(err)
	}
	return s.fallback.Increment(ctx, key, window)
}
