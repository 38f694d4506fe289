package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/nandakumarbm26/Products-RestAPI/internal/app"
	"github.com/nandakumarbm26/Products-RestAPI/internal/cache"
	"github.com/nandakumarbm26/Products-RestAPI/internal/handlers"
	"github.com/nandakumarbm26/Products-RestAPI/internal/middleware"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
	"github.com/nandakumarbm26/Products-RestAPI/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the catalog routes.
// A nil store serves every read straight from the database. A nil monitoring module
// falls back to the default Prometheus registry and a static health payload.
func NewRouter(db *gorm.DB, cfg *app.Config, store cache.Store, mon *monitoring.Module) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	productSvc, err := services.NewProductService(db, services.WithQueryTimeout(cfg.Database.QueryTimeout))
	if err != nil {
		return nil, err
	}
	catalog, err := services.NewProductCatalog(productSvc, store, services.WithCatalogConfig(cfg.CatalogConfig()))
	if err != nil {
		return nil, err
	}
	productHandler, err := handlers.NewProductHandler(catalog,
		handlers.WithPagination(cfg.API.DefaultPerPage, cfg.API.MaxPerPage),
	)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORS.AllowedOrigins}))
	if cfg.Compression.Enabled {
		r.Use(middleware.Compression(cfg.Compression.Level))
	}
	if limit := cfg.Server.RateLimit; limit.Enabled {
		r.Use(middleware.RateLimit(middleware.RateLimitOptions{
			Requests: limit.Requests,
			Window:   limit.Window,
			Store:    middleware.NewCacheRateStore(store),
			Timeout:  cfg.Cache.Products.Timeout,
		}))
	}

	registerHealthRoutes(r, cfg, mon)
	registerProductRoutes(r, productHandler)
	registerMonitoringRoutes(r, handlers.NewMonitoringHandler(mon, cfg))

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		if mon != nil {
			r.GET(endpoint, gin.WrapH(mon.Handler()))
		} else {
			r.GET(endpoint, gin.WrapH(promhttp.Handler()))
		}
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
