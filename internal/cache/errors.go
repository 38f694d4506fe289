package cache

import "errors"

var (
	// ErrNotConfigured is returned when a cache operation is attempted without a backend.
	ErrNotConfigured = errors.New("cache: store not configured")
	// ErrUnavailable is returned by the breaker while the backend is considered down.
	ErrUnavailable = errors.New("cache: backend unavailable")
)
