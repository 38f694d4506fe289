package app

import (
	"strings"

	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
	"github.com/nandakumarbm26/Products-RestAPI/internal/services"
)

// Cache backends accepted by cache.products.backend.
const (
	BackendAuto     = "auto"
	BackendRedis    = "redis"
	BackendDatabase = "database"
	BackendMemory   = "memory"
	BackendNone     = "none"
)

func normalizeBackend(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return BackendAuto
	}
	return value
}

// RedisClientConfig converts the application cache configuration into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
		Prefix:   c.Redis.Prefix,
	}
}

// ProductBackend resolves the store the catalog should use. "auto" picks Redis when it is
// enabled and the database store otherwise.
func (c CacheConfig) ProductBackend() string {
	backend := normalizeBackend(c.Products.Backend)
	if backend != BackendAuto {
		return backend
	}
	if c.Redis.Enabled {
		return BackendRedis
	}
	return BackendDatabase
}

// BreakerConfig converts the breaker settings for the cache package.
func (c CacheConfig) BreakerConfig(name string) cache.BreakerConfig {
	return cache.BreakerConfig{
		Name:             name,
		MaxRequests:      c.Products.Breaker.MaxRequests,
		Interval:         c.Products.Breaker.Interval,
		OpenTimeout:      c.Products.Breaker.OpenTimeout,
		FailureThreshold: c.Products.Breaker.FailureThreshold,
		MinRequests:      c.Products.Breaker.MinRequests,
	}
}

// CatalogConfig derives the catalog cache settings from the cache, database and API sections.
func (c *Config) CatalogConfig() services.CatalogConfig {
	return services.CatalogConfig{
		TTL:            c.Cache.Products.TTL,
		CacheTimeout:   c.Cache.Products.Timeout,
		LoadTimeout:    c.Database.QueryTimeout,
		FailOpen:       c.Cache.Products.FailOpen,
		DefaultPerPage: c.API.DefaultPerPage,
	}
}
