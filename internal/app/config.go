package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "PRODUCTS"

// Config represents the runtime configuration for the products API.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	API         APIConfig         `mapstructure:"api"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Compression CompressionConfig `mapstructure:"compression"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`

	// source is the config file that was read, empty when running on defaults.
	source string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	LogLevel        string          `mapstructure:"log_level"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig controls the fixed-window request limiter.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	Path         string        `mapstructure:"path"`
	DSN          string        `mapstructure:"dsn"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	Postgres     DBAuthConfig  `mapstructure:"postgres"`
	MySQL        DBAuthConfig  `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis    RedisCacheConfig    `mapstructure:"redis"`
	Products ProductsCacheConfig `mapstructure:"products"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Prefix   string        `mapstructure:"prefix"`
}

// ProductsCacheConfig tunes the product catalog cache.
type ProductsCacheConfig struct {
	// Backend selects the store: auto, redis, database, memory or none.
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
	FailOpen bool          `mapstructure:"fail_open"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of the cache backend.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
	MinRequests      uint32        `mapstructure:"min_requests"`
}

// APIConfig bounds pagination.
type APIConfig struct {
	DefaultPerPage int `mapstructure:"default_per_page"`
	MaxPerPage     int `mapstructure:"max_per_page"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CompressionConfig toggles gzip responses.
type CompressionConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Level   int  `mapstructure:"level"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig schedules the background cleanup jobs.
type MaintenanceConfig struct {
	CacheCleanupSchedule string        `mapstructure:"cache_cleanup_schedule"`
	PurgeSchedule        string        `mapstructure:"purge_schedule"`
	PurgeRetention       time.Duration `mapstructure:"purge_retention"`
}

// Source returns the path of the config file that was loaded, or "" when none was found.
func (c *Config) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := newViper(paths...)

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	return decodeConfig(v)
}

func newViper(paths ...string) *viper.Viper {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	config.source = v.ConfigFileUsed()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.API.DefaultPerPage <= 0 {
		return fmt.Errorf("config: api.default_per_page must be positive")
	}
	if c.API.MaxPerPage < c.API.DefaultPerPage {
		return fmt.Errorf("config: api.max_per_page must be at least api.default_per_page")
	}
	switch normalizeBackend(c.Cache.Products.Backend) {
	case BackendAuto, BackendRedis, BackendDatabase, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("config: unknown cache.products.backend %q", c.Cache.Products.Backend)
	}
	if c.Cache.Products.TTL < 0 {
		return fmt.Errorf("config: cache.products.ttl must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests", 100)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/products.sqlite")
	v.SetDefault("database.query_timeout", "5s")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.redis.prefix", "products:")

	v.SetDefault("cache.products.backend", BackendAuto)
	v.SetDefault("cache.products.ttl", "600s")
	v.SetDefault("cache.products.timeout", "500ms")
	v.SetDefault("cache.products.fail_open", false)
	v.SetDefault("cache.products.breaker.max_requests", 1)
	v.SetDefault("cache.products.breaker.interval", "30s")
	v.SetDefault("cache.products.breaker.open_timeout", "10s")
	v.SetDefault("cache.products.breaker.failure_threshold", 0.5)
	v.SetDefault("cache.products.breaker.min_requests", 5)

	v.SetDefault("api.default_per_page", 10)
	v.SetDefault("api.max_per_page", 100)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("compression.enabled", true)
	v.SetDefault("compression.level", -1)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.cache_cleanup_schedule", "@every 15m")
	v.SetDefault("maintenance.purge_schedule", "@daily")
	v.SetDefault("maintenance.purge_retention", "720h") // 30 days
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
