package database

import (
	"gorm.io/gorm"

	"github.com/nandakumarbm26/Products-RestAPI/internal/models"
)

// AutoMigrate creates or updates the product table and the cache fallback table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.CacheEntry{},
	)
}
