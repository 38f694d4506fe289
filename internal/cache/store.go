package cache

import (
	"context"
	"time"
)

// Store represents the shared cache interface used by the catalog and the rate limiter.
// A ttl of zero stores the value without expiry.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Pinger is implemented by stores that can probe their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reachability reports whether a store is currently worth calling.
type Reachability interface {
	Reachable() bool
}

// Reachable reports whether store can be used right now. Stores that do not track
// reachability are always considered reachable; a nil store never is.
func Reachable(store Store) bool {
	if store == nil {
		return false
	}
	if r, ok := store.(Reachability); ok {
		return r.Reachable()
	}
	return true
}

// Ping probes store when it supports it.
func Ping(ctx context.Context, store Store) error {
	if store == nil {
		return ErrNotConfigured
	}
	if p, ok := store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
