package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel provides the identifier, timestamps and soft-delete tombstone shared by catalog records.
type BaseModel struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
