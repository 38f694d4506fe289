package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
	"github.com/nandakumarbm26/Products-RestAPI/internal/models"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
	"github.com/nandakumarbm26/Products-RestAPI/internal/requestctx"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/logger"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/metrics"
)

const (
	defaultCatalogTTL          = 600 * time.Second
	defaultCatalogCacheTimeout = 500 * time.Millisecond
	defaultCatalogLoadTimeout  = 5 * time.Second
	defaultCatalogPerPage      = 10
)

// ErrCacheUnavailable is returned by reads when the cache backend fails and fail-open is disabled.
var ErrCacheUnavailable = errors.New("product catalog: cache unavailable")

// ProductRepository is the storage backend consumed by the catalog.
type ProductRepository interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uint64) (*models.Product, error)
	List(ctx context.Context, page, perPage int) (*ProductPage, error)
	Filter(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, id uint64, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uint64) error
}

// CatalogConfig tunes the cache behaviour of the catalog.
type CatalogConfig struct {
	TTL            time.Duration
	CacheTimeout   time.Duration
	LoadTimeout    time.Duration
	FailOpen       bool
	DefaultPerPage int
}

// ProductCatalog fronts a ProductRepository with a read-through, write-invalidate cache.
type ProductCatalog struct {
	repo  ProductRepository
	store cache.Store
	cfg   CatalogConfig
	group singleflight.Group
	log   *zap.Logger

	newGeneration func() string
}

// CatalogOption customises the ProductCatalog.
type CatalogOption func(*ProductCatalog)

// WithCatalogConfig overrides the cache settings. Zero values keep the defaults.
func WithCatalogConfig(cfg CatalogConfig) CatalogOption {
	return func(c *ProductCatalog) {
		if cfg.TTL > 0 {
			c.cfg.TTL = cfg.TTL
		}
		if cfg.CacheTimeout > 0 {
			c.cfg.CacheTimeout = cfg.CacheTimeout
		}
		if cfg.LoadTimeout > 0 {
			c.cfg.LoadTimeout = cfg.LoadTimeout
		}
		if cfg.DefaultPerPage > 0 {
			c.cfg.DefaultPerPage = cfg.DefaultPerPage
		}
		c.cfg.FailOpen = cfg.FailOpen
	}
}

// WithGenerationSource overrides how new collection generations are minted.
func WithGenerationSource(fn func() string) CatalogOption {
	return func(c *ProductCatalog) {
		if fn != nil {
			c.newGeneration = fn
		}
	}
}

// NewProductCatalog wires the repository and the cache store. A nil store disables caching.
func NewProductCatalog(repo ProductRepository, store cache.Store, opts ...CatalogOption) (*ProductCatalog, error) {
	if repo == nil {
		return nil, errors.New("product catalog: repository is required")
	}

	catalog := &ProductCatalog{
		repo:  repo,
		store: store,
		cfg: CatalogConfig{
			TTL:            defaultCatalogTTL,
			CacheTimeout:   defaultCatalogCacheTimeout,
			LoadTimeout:    defaultCatalogLoadTimeout,
			DefaultPerPage: defaultCatalogPerPage,
		},
		log:           logger.WithModule("catalog"),
		newGeneration: uuid.NewString,
	}
	for _, opt := range opts {
		opt(catalog)
	}
	return catalog, nil
}

// Config returns the effective cache settings.
func (c *ProductCatalog) Config() CatalogConfig {
	return c.cfg
}

// List returns one page of products through the cache.
func (c *ProductCatalog) List(ctx context.Context, page, perPage int) (*ProductPage, error) {
	return readThrough(ctx, c, "list",
		func(generation string) (string, error) {
			return ProductsListKey(page, perPage, generation), nil
		},
		true,
		func(ctx context.Context) (*ProductPage, error) {
			return c.repo.List(ctx, page, perPage)
		},
	)
}

// Get returns a single product through the cache.
func (c *ProductCatalog) Get(ctx context.Context, id uint64) (*models.Product, error) {
	return readThrough(ctx, c, "get",
		func(generation string) (string, error) {
			return ProductKey(id, generation), nil
		},
		true,
		func(ctx context.Context) (*models.Product, error) {
			return c.repo.Get(ctx, id)
		},
	)
}

// Filter returns the products matching filter through the cache.
func (c *ProductCatalog) Filter(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	filter = filter.Normalized()
	return readThrough(ctx, c, "filter",
		func(generation string) (string, error) {
			return FilteredProductsKey(filter, generation)
		},
		true,
		func(ctx context.Context) ([]models.Product, error) {
			return c.repo.Filter(ctx, filter)
		},
	)
}

// Create persists a product and invalidates every cached collection.
func (c *ProductCatalog) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	product, err := c.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "create", nil)
	return product, nil
}

// Update modifies a product and invalidates its item entry and every cached collection.
func (c *ProductCatalog) Update(ctx context.Context, id uint64, input UpdateProductInput) (*models.Product, error) {
	product, err := c.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "update", &id)
	return product, nil
}

// Delete removes a product and invalidates its item entry and every cached collection.
func (c *ProductCatalog) Delete(ctx context.Context, id uint64) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, "delete", &id)
	return nil
}

func readThrough[T any](
	ctx context.Context,
	c *ProductCatalog,
	operation string,
	keyFor func(generation string) (string, error),
	versioned bool,
	load func(context.Context) (T, error),
) (T, error) {
	var zero T
	ctx = ensuredContext(ctx)

	if !cache.Reachable(c.store) {
		monitoring.RecordCacheLookup(operation, metrics.ResultBypass)
		return load(ctx)
	}

	generation := ""
	if versioned {
		current, err := c.currentGeneration(ctx)
		if err != nil {
			if ferr := c.cacheFailure(ctx, operation, "generation", err); ferr != nil {
				return zero, ferr
			}
			return load(ctx)
		}
		generation = current
	}

	key, err := keyFor(generation)
	if err != nil {
		return zero, fmt.Errorf("product catalog: derive cache key: %w", err)
	}

	cached, found, err := c.cacheGet(ctx, key)
	if err != nil {
		if ferr := c.cacheFailure(ctx, operation, key, err); ferr != nil {
			return zero, ferr
		}
		return load(ctx)
	}
	if found {
		var value T
		if err := json.Unmarshal(cached, &value); err != nil {
			if ferr := c.cacheFailure(ctx, operation, key, fmt.Errorf("decode cached payload: %w", err)); ferr != nil {
				return zero, ferr
			}
			return load(ctx)
		}
		monitoring.RecordCacheLookup(operation, metrics.ResultHit)
		return value, nil
	}

	monitoring.RecordCacheLookup(operation, metrics.ResultMiss)

	// The shared load belongs to every caller waiting on key, not to the one that started it.
	detached := context.WithoutCancel(ctx)
	result := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(detached, c.cfg.LoadTimeout)
		defer cancel()

		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.populate(loadCtx, operation, key, value)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// cacheFailure applies the read failure policy. It returns nil when the caller should fall back to storage.
func (c *ProductCatalog) cacheFailure(ctx context.Context, operation, key string, err error) error {
	monitoring.RecordCacheLookup(operation, metrics.ResultError)
	log := c.logFor(ctx)
	if c.cfg.FailOpen {
		log.Warn("cache read failed, serving from storage",
			zap.String("operation", operation),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil
	}
	log.Error("cache read failed",
		zap.String("operation", operation),
		zap.String("key", key),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}

func (c *ProductCatalog) populate(ctx context.Context, operation, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err == nil {
		err = c.cacheSet(ctx, key, payload, c.cfg.TTL)
	}
	if err != nil {
		monitoring.RecordCacheWrite(operation, "failure")
		c.logFor(ctx).Warn("cache populate failed",
			zap.String("operation", operation),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	monitoring.RecordCacheWrite(operation, "success")
}

// currentGeneration returns the collection generation, minting one when none is stored.
func (c *ProductCatalog) currentGeneration(ctx context.Context) (string, error) {
	value, found, err := c.cacheGet(ctx, ProductsGenerationKey)
	if err != nil {
		return "", err
	}
	if found && len(value) > 0 {
		return string(value), nil
	}

	generation := c.newGeneration()
	if err := c.cacheSet(ctx, ProductsGenerationKey, []byte(generation), 0); err != nil {
		return "", err
	}
	return generation, nil
}

// invalidate rotates the collection generation and drops the keys a mutation made stale.
// Failures are logged and counted, never returned.
func (c *ProductCatalog) invalidate(ctx context.Context, operation string, id *uint64) {
	if !cache.Reachable(c.store) {
		monitoring.RecordCacheInvalidation(operation, metrics.ResultBypass)
		c.logFor(ctx).Warn("cache unreachable, skipped invalidation", zap.String("operation", operation))
		return
	}

	// Invalidation has to outlive a cancelled request.
	ctx = context.WithoutCancel(ensuredContext(ctx))

	var keys []string
	failed := false
	previous, found, err := c.cacheGet(ctx, ProductsGenerationKey)
	if err != nil {
		failed = true
		c.invalidationFailed(ctx, operation, "read generation", err)
	} else if found && len(previous) > 0 {
		if id != nil {
			keys = append(keys, ProductKey(*id, string(previous)))
		}
		keys = append(keys, ProductsListKey(1, c.cfg.DefaultPerPage, string(previous)))
	}

	if err := c.cacheSet(ctx, ProductsGenerationKey, []byte(c.newGeneration()), 0); err != nil {
		failed = true
		c.invalidationFailed(ctx, operation, "rotate generation", err)
	}

	if len(keys) > 0 {
		if err := c.cacheDelete(ctx, keys...); err != nil {
			failed = true
			c.invalidationFailed(ctx, operation, "delete keys", err)
		}
	}

	if !failed {
		monitoring.RecordCacheInvalidation(operation, "success")
	}
	c.logFor(ctx).Debug("cache invalidated", zap.String("operation", operation), zap.Strings("keys", keys))
}

func (c *ProductCatalog) invalidationFailed(ctx context.Context, operation, step string, err error) {
	monitoring.RecordCacheInvalidation(operation, "failure")
	c.logFor(ctx).Warn("cache invalidation failed",
		zap.String("operation", operation),
		zap.String("step", step),
		zap.Error(err),
	)
}

func (c *ProductCatalog) logFor(ctx context.Context) *zap.Logger {
	if id := requestctx.ID(ctx); id != "" {
		return c.log.With(zap.String("request_id", id))
	}
	return c.log
}

func (c *ProductCatalog) cacheGet(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CacheTimeout)
	defer cancel()
	return c.store.Get(ctx, key)
}

func (c *ProductCatalog) cacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CacheTimeout)
	defer cancel()
	return c.store.Set(ctx, key, value, ttl)
}

func (c *ProductCatalog) cacheDelete(ctx context.Context, keys ...string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CacheTimeout)
	defer cancel()
	return c.store.Delete(ctx, keys...)
}
