package checks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nandakumarbm26/Products-RestAPI/internal/models"
	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

var (
	errDatabaseNotConfigured = errors.New("database not configured")
	errProductsTableMissing  = errors.New("products table missing")
)

// Database reports the product store ready once it answers a ping and the products table
// has been migrated.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	if timeout <= 0 {
		timeout = defaultDatabaseTimeout
	}
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		started := time.Now()
		err := checkProductStore(ctx, db, timeout)
		return monitoring.ResultFromError("database", err, time.Since(started))
	})
}

func checkProductStore(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	if db == nil {
		return errDatabaseNotConfigured
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if !db.WithContext(ctx).Migrator().HasTable(&models.Product{}) {
		return errProductsTableMissing
	}
	return nil
}
