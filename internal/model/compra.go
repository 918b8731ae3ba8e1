package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compra is a purchase document against a proveedor.
// TipoDocumento: "boleta" | "factura"
// Estado: "pendiente" | "recibida" | "rechazada"
//
// MontoNeto/MontoIVA/MontoTotal are derived by the money engine and written
// together; once the estado is terminal the whole document is immutable.
type Compra struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TipoDocumento string    `gorm:"type:varchar(20);not null"`
	// Correlativo is assigned from a sequence inside the create transaction,
	// never supplied by the client.
	Correlativo   int64           `gorm:"not null"`
	Fecha         time.Time       `gorm:"not null"`
	ProveedorID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	TasaIVA       decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0.19;column:tasa_iva"`
	MontoNeto     decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	MontoIVA      decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0;column:monto_iva"`
	MontoTotal    decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Observaciones *string
	Eliminada     bool `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Proveedor *Proveedor   `gorm:"foreignKey:ProveedorID"`
	Items     []CompraItem `gorm:"foreignKey:CompraID"`
}

// CompraItem is one priced line within a Compra.
// Subtotal = max(0, cantidad*precio_unitario - descuento), recomputed
// whenever any of the three inputs changes.
type CompraItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	InsumoID       uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	Descuento      decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Insumo *Insumo `gorm:"foreignKey:InsumoID"`
}

// ── Estado lifecycle ─────────────────────────────────────────────────────────

const (
	CompraPendiente = "pendiente"
	CompraRecibida  = "recibida"
	CompraRechazada = "rechazada"
)

// transiciones is the full transition table. Anything not listed — including
// self-transitions and anything out of a terminal estado — is illegal.
var transiciones = map[string][]string{
	CompraPendiente: {CompraRecibida, CompraRechazada},
	CompraRecibida:  {},
	CompraRechazada: {},
}

// CanTransition consults the transition table.
func CanTransition(from, to string) bool {
	for _, t := range transiciones[from] {
		if t == to {
			return true
		}
	}
	return false
}

// EstadoTerminal reports whether estado has no outgoing transitions.
func EstadoTerminal(estado string) bool {
	ts, ok := transiciones[estado]
	return ok && len(ts) == 0
}

// EstadoConocido reports whether estado appears in the table at all.
func EstadoConocido(estado string) bool {
	_, ok := transiciones[estado]
	return ok
}
