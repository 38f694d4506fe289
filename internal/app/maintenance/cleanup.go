package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/logger"
)

const (
	// JobCacheCleanup removes expired entries from the cache store.
	JobCacheCleanup = "cache_cleanup"
	// JobProductPurge hard-deletes products soft-deleted longer than the retention window.
	JobProductPurge = "product_purge"

	defaultCacheCleanupSpec = "@every 15m"
	defaultPurgeSpec        = "@daily"
	defaultPurgeRetention   = 30 * 24 * time.Hour
)

// ExpiredPurger is implemented by cache stores that keep expired rows until swept.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// DeletedPurger removes soft-deleted records older than a cut-off.
type DeletedPurger interface {
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

// Cleaner coordinates background maintenance tasks: sweeping expired cache entries and
// purging soft-deleted products once their retention elapses.
type Cleaner struct {
	cache     ExpiredPurger
	products  DeletedPurger
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention time.Duration

	cacheSchedule string
	purgeSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithPurgeRetention adjusts how long soft-deleted products are kept.
func WithPurgeRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.retention = retention
		}
	}
}

// WithCacheCleanupSchedule overrides the cron specification for the cache sweep.
func WithCacheCleanupSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithPurgeSchedule overrides the cron specification for the product purge.
func WithPurgeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.purgeSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(cacheStore ExpiredPurger, products DeletedPurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		cache:         cacheStore,
		products:      products,
		now:           time.Now,
		retention:     defaultPurgeRetention,
		cacheSchedule: defaultCacheCleanupSpec,
		purgeSchedule: defaultPurgeSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.cache != nil || cleaner.products != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if _, err := c.CleanupCache(context.Background()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule %s: %w", JobCacheCleanup, err)
		}
	}

	if c.products != nil {
		if _, err := c.cron.AddFunc(c.purgeSchedule, func() {
			if _, err := c.PurgeProducts(context.Background()); err != nil {
				c.log.Warn("product purge failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule %s: %w", JobProductPurge, err)
		}
	}

	c.cron.Start()
	c.log.Info("maintenance jobs scheduled",
		zap.Bool(JobCacheCleanup, c.cache != nil),
		zap.Bool(JobProductPurge, c.products != nil),
	)
	return nil
}

// Stop halts the underlying scheduler. The returned context is done once running jobs complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.cache != nil {
		if _, err := c.CleanupCache(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.products != nil {
		if _, err := c.PurgeProducts(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// CleanupCache sweeps expired cache entries.
func (c *Cleaner) CleanupCache(ctx context.Context) (int64, error) {
	if c.cache == nil {
		return 0, nil
	}
	return c.run(JobCacheCleanup, func() (int64, error) {
		return c.cache.PurgeExpired(ctx, c.now())
	})
}

// PurgeProducts hard-deletes products whose soft delete is older than the retention window.
func (c *Cleaner) PurgeProducts(ctx context.Context) (int64, error) {
	if c.products == nil {
		return 0, nil
	}
	cutoff := c.now().Add(-c.retention)
	return c.run(JobProductPurge, func() (int64, error) {
		return c.products.PurgeDeleted(ctx, cutoff)
	})
}

func (c *Cleaner) run(job string, fn func() (int64, error)) (int64, error) {
	start := time.Now()
	removed, err := fn()
	duration := time.Since(start)

	if err != nil {
		monitoring.RecordMaintenanceRun(job, "failure", err.Error(), removed, duration)
		return removed, fmt.Errorf("%s: %w", job, err)
	}

	monitoring.RecordMaintenanceRun(job, "success", "", removed, duration)
	if removed > 0 {
		c.log.Info("maintenance job removed rows", zap.String("job", job), zap.Int64("removed", removed))
	}
	return removed, nil
}
