package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor is the supplier-facing record of a Parte. RUT is stored in
// canonical form and is the real identity key: a Cliente row with the same
// canonical RUT is the same legal entity, cross-linked via EsCliente/ClienteID.
type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RUT       string    `gorm:"column:rut;uniqueIndex;not null"`
	Nombre    string    `gorm:"index;not null"`
	Email     *string
	Telefono  *string
	Direccion *string
	EsCliente bool       `gorm:"not null;default:false"`
	ClienteID *uuid.UUID `gorm:"type:uuid"`
	Activo    bool       `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
