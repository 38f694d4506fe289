package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nandakumarbm26/Products-RestAPI/pkg/logger"
)

// BreakerConfig tunes the circuit breaker guarding a cache backend.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold float64
	MinRequests      uint32
	// OnReachabilityChange is notified whenever the breaker opens or leaves the open state.
	OnReachabilityChange func(reachable bool)
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		OpenTimeout:      10 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}
}

// BreakerStore wraps a Store with a circuit breaker. While the breaker is open every call fails
// fast with ErrUnavailable and Reachable reports false.
type BreakerStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next with a breaker configured from cfg.
func NewBreakerStore(next Store, cfg BreakerConfig) *BreakerStore {
	defaults := DefaultBreakerConfig(cfg.Name)
	if cfg.Name == "" {
		cfg.Name = "cache"
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = defaults.MaxRequests
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.FailureThreshold <= 0 || cfg.FailureThreshold > 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = defaults.MinRequests
	}

	log := logger.WithModule("cache")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("cache breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if cfg.OnReachabilityChange != nil && (from == gobreaker.StateOpen || to == gobreaker.StateOpen) {
				cfg.OnReachabilityChange(to != gobreaker.StateOpen)
			}
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about the backend.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerStore{next: next, breaker: breaker}
}

// Reachable reports false while the breaker is open.
func (s *BreakerStore) Reachable() bool {
	return s.breaker.State() != gobreaker.StateOpen
}

// State exposes the breaker state for health reporting.
func (s *BreakerStore) State() string {
	return s.breaker.State().String()
}

// Unwrap returns the guarded store.
func (s *BreakerStore) Unwrap() Store {
	return s.next
}

// IncrementWithTTL delegates through the breaker.
func (s *BreakerStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	type result struct {
		count int64
		ttl   time.Duration
	}
	out, err := s.execute(func() (interface{}, error) {
		count, ttl, err := s.next.IncrementWithTTL(ctx, key, window)
		return result{count: count, ttl: ttl}, err
	})
	if err != nil {
		return 0, 0, err
	}
	res := out.(result)
	return res.count, res.ttl, nil
}

// Set delegates through the breaker.
func (s *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.Set(ctx, key, value, ttl)
	})
	return err
}

// Get delegates through the breaker.
func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	type result struct {
		value []byte
		found bool
	}
	out, err := s.execute(func() (interface{}, error) {
		value, found, err := s.next.Get(ctx, key)
		return result{value: value, found: found}, err
	})
	if err != nil {
		return nil, false, err
	}
	res := out.(result)
	return res.value, res.found, nil
}

// Delete delegates through the breaker.
func (s *BreakerStore) Delete(ctx context.Context, keys ...string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.Delete(ctx, keys...)
	})
	return err
}

// Ping probes the guarded store directly so health checks can observe recovery.
func (s *BreakerStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.next)
}

func (s *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	out, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return out, err
}
