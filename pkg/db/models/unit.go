package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a unit of measure referenced by products ("PCS" by default).
type Unit struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
