package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one product line within an order. The unit price is a snapshot
// taken when the line is first persisted; the discount is order-scoped and
// restamped on every line whenever the order's composition changes.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_order_items_order_product"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_order_items_order_product"`
	Quantity        int             `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	DiscountPercent int             `gorm:"column:discount;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
