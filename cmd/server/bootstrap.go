package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nandakumarbm26/Products-RestAPI/internal/api"
	"github.com/nandakumarbm26/Products-RestAPI/internal/app"
	"github.com/nandakumarbm26/Products-RestAPI/internal/app/maintenance"
	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
	"github.com/nandakumarbm26/Products-RestAPI/internal/database"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring/checks"
	"github.com/nandakumarbm26/Products-RestAPI/internal/services"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/logger"
)

const healthProbeTimeout = 2 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Store      cache.Store
	Redis      *cache.RedisStore
	Monitoring *monitoring.Module
	Cleaner    *maintenance.Cleaner
	Watcher    *app.ConfigWatcher
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, the product cache, background jobs and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, configPaths []string, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.Monitoring, err = monitoring.NewModule(monitoring.Options{})
	if err != nil {
		return nil, fmt.Errorf("initialise monitoring: %w", err)
	}
	monitoring.SetModule(stack.Monitoring)

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	base, err := stack.openCacheStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if base != nil {
		breakerCfg := cfg.Cache.BreakerConfig("products")
		breakerCfg.OnReachabilityChange = monitoring.SetCacheReachable
		stack.Store = cache.NewBreakerStore(base, breakerCfg)
	}
	monitoring.SetCacheReachable(stack.Store != nil)

	productSvc, err := services.NewProductService(stack.DB, services.WithQueryTimeout(cfg.Database.QueryTimeout))
	if err != nil {
		return nil, fmt.Errorf("initialise product service: %w", err)
	}

	var expired maintenance.ExpiredPurger
	if purger, ok := base.(maintenance.ExpiredPurger); ok {
		expired = purger
	}
	stack.Cleaner = maintenance.NewCleaner(expired, productSvc,
		maintenance.WithCacheCleanupSchedule(cfg.Maintenance.CacheCleanupSchedule),
		maintenance.WithPurgeSchedule(cfg.Maintenance.PurgeSchedule),
		maintenance.WithPurgeRetention(cfg.Maintenance.PurgeRetention),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	registerHealthChecks(stack.Monitoring.Health(), stack.DB, stack.Store, cfg)

	stack.Router, err = api.NewRouter(stack.DB, cfg, stack.Store, stack.Monitoring)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	if cfg.Source() != "" {
		stack.Watcher, err = app.WatchConfig(cfg, configPaths...)
		if err != nil {
			log.Warn("config watcher unavailable; changes require a restart", zap.Error(err))
		} else {
			stack.Watcher.OnChange(app.ApplyLogLevel)
			log.Info("watching config file", zap.String("path", cfg.Source()))
		}
	}

	success = true
	return stack, nil
}

// openCacheStore builds the backend selected by cache.products.backend. Redis falls back to the
// database store when it cannot be reached at start-up.
func (s *runtimeStack) openCacheStore(ctx context.Context, cfg *app.Config, log *zap.Logger) (cache.Store, error) {
	backend := cfg.Cache.ProductBackend()
	switch backend {
	case app.BackendNone:
		log.Info("product cache disabled")
		return nil, nil
	case app.BackendMemory:
		log.Info("product cache ready", zap.String("backend", backend))
		return cache.NewMemoryStore(), nil
	case app.BackendRedis:
		redisStore, err := cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig())
		if err == nil {
			s.Redis = redisStore
			log.Info("product cache ready", zap.String("backend", backend), zap.String("addr", cfg.Cache.Redis.Address))
			return redisStore, nil
		}
		log.Warn("redis unavailable; falling back to database cache", zap.Error(err))
		fallthrough
	case app.BackendDatabase:
		log.Info("product cache ready", zap.String("backend", app.BackendDatabase))
		return cache.NewDatabaseStore(s.DB), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", backend)
	}
}

func registerHealthChecks(manager *monitoring.HealthManager, db *gorm.DB, store cache.Store, cfg *app.Config) {
	if manager == nil {
		return
	}

	manager.RegisterLiveness(checks.Maintenance(0))

	manager.RegisterReadiness(checks.Database(db, healthProbeTimeout))
	manager.RegisterReadiness(checks.Cache(store, cfg.Cache.Products.Timeout))
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			log.Warn("config watcher shutdown", zap.Error(err))
		}
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown")
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Prepare(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("prepare database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		applyDBAuth(&dbCfg, cfg.Database.Postgres)
	case "mysql", "mariadb":
		dbCfg.Driver = "mysql"
		applyDBAuth(&dbCfg, cfg.Database.MySQL)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func applyDBAuth(dbCfg *database.Config, auth app.DBAuthConfig) {
	dbCfg.Host = strings.TrimSpace(auth.Host)
	dbCfg.Port = auth.Port
	dbCfg.Name = strings.TrimSpace(auth.Database)
	dbCfg.User = strings.TrimSpace(auth.Username)
	dbCfg.Password = auth.Password
}
