package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the canonical catalog entry, keyed by the supplier item code.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string          `gorm:"column:code;not null;uniqueIndex"`
	Description string          `gorm:"column:description;not null"`
	UnitID      uuid.UUID       `gorm:"column:unit_id;type:uuid;not null"`
	Pricing     *ProductPricing `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Stock       []StockLevel    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
