package models

import (
	"time"
)

// CacheEntry represents a cached payload stored in the SQL fallback. A nil ExpiresAt never expires.
type CacheEntry struct {
	Key       string     `gorm:"primaryKey;size:256"`
	Value     []byte     `gorm:"type:blob"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the cache table name.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Expired reports whether the entry is past its expiry at the supplied instant.
func (e CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}
