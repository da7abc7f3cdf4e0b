package models

import (
	"time"

	"github.com/google/uuid"
)

// Order groups the line items created by one user.
type Order struct {
	ID          uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID   `gorm:"column:user_id;type:uuid;not null"`
	OrderNumber *string     `gorm:"column:order_number"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
