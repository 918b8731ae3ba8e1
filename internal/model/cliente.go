package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is the customer-facing record of a Parte, symmetric to Proveedor.
type Cliente struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RUT         string    `gorm:"column:rut;uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Email       *string
	Telefono    *string
	Direccion   *string
	EsProveedor bool       `gorm:"not null;default:false"`
	ProveedorID *uuid.UUID `gorm:"type:uuid"`
	Activo      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Cliente) TableName() string { return "clientes" }
