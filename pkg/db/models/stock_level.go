package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel tracks the on-hand quantity per product per location.
type StockLevel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_stock_product_location"`
	Location  string    `gorm:"column:location;not null;uniqueIndex:idx_stock_product_location"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
