package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductPricing holds the two price columns owned 1:1 by a product.
type ProductPricing struct {
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	RetailPrice decimal.Decimal `gorm:"column:retail_price;type:numeric(14,2);not null"`
	DealerPrice decimal.Decimal `gorm:"column:dealer_price;type:numeric(14,2);not null"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
