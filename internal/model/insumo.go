package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Insumo is a consumable or product referenced by purchase lines. PrecioNeto
// is the default unit price when a line first selects it; Stock is increased
// by the recepcion worker when a compra is received.
type Insumo struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string          `gorm:"index;not null"`
	Descripcion *string
	PrecioNeto  decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	Stock       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Insumo) TableName() string { return "insumos" }
