package models

import (
	"time"

	"gorm.io/gorm"

	"finloan/internal/uuid"
)

// Base holds the columns every table shares. Rows are soft-deleted through
// DeletedAt unless a service deletes Unscoped (budgets, account removal).
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a time-ordered UUIDv7 when the caller left ID empty.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
