package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is the sales header referencing a Cliente. Only the fields the
// purchase core needs are modeled here: the customer-role demote guard
// consults non-deleted ventas as the transaction history that must not be
// orphaned.
type Venta struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Fecha      time.Time       `gorm:"not null"`
	MontoTotal decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	Eliminada  bool            `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Venta) TableName() string { return "ventas" }
