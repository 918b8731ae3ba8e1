package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemCompraRequest is one draft line. Descuento is a pointer so a zero
// discount is omitted entirely on the wire — "no discount" and "explicit
// zero" serialize identically as absence.
type ItemCompraRequest struct {
	InsumoID       string           `json:"insumo_id"       validate:"required,uuid"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	PrecioUnitario decimal.Decimal  `json:"precio_unitario"`
	Descuento      *decimal.Decimal `json:"descuento,omitempty"`
}

type CrearCompraRequest struct {
	TipoDocumento string              `json:"tipo_documento" validate:"required,oneof=boleta factura"`
	Fecha         string              `json:"fecha"          validate:"required"` // ISO-8601 YYYY-MM-DD
	ProveedorID   string              `json:"proveedor_id"   validate:"required,uuid"`
	TasaIVA       *decimal.Decimal    `json:"tasa_iva"       validate:"omitempty"`
	Items         []ItemCompraRequest `json:"items"          validate:"required,min=1,dive"`
	Observaciones *string             `json:"observaciones"`
}

// PreviewCompraRequest carries the draft lines for the authoritative totals
// computation. Same item shape as CrearCompraRequest, nothing persisted.
// An empty draft is a legal preview: it answers with zero totals.
type PreviewCompraRequest struct {
	TipoDocumento string              `json:"tipo_documento" validate:"required,oneof=boleta factura"`
	TasaIVA       *decimal.Decimal    `json:"tasa_iva"       validate:"omitempty"`
	Items         []ItemCompraRequest `json:"items"          validate:"dive"`
}

type CambiarEstadoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=recibida rechazada"`
}

// CompraFilter is bound from the query string of GET /v1/compras.
type CompraFilter struct {
	Estado string `form:"estado"` // pendiente | recibida | rechazada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemCompraResponse struct {
	InsumoID       string          `json:"insumo_id"`
	Insumo         string          `json:"insumo,omitempty"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type PreviewCompraResponse struct {
	MontoNeto  decimal.Decimal      `json:"monto_neto"`
	MontoIVA   decimal.Decimal      `json:"monto_iva"`
	MontoTotal decimal.Decimal      `json:"monto_total"`
	Items      []ItemCompraResponse `json:"items"`
}

type CompraResponse struct {
	ID            string               `json:"id"`
	TipoDocumento string               `json:"tipo_documento"`
	Correlativo   int64                `json:"correlativo"`
	Fecha         string               `json:"fecha"`
	ProveedorID   string               `json:"proveedor_id"`
	Proveedor     string               `json:"proveedor,omitempty"`
	TasaIVA       decimal.Decimal      `json:"tasa_iva"`
	MontoNeto     decimal.Decimal      `json:"monto_neto"`
	MontoIVA      decimal.Decimal      `json:"monto_iva"`
	MontoTotal    decimal.Decimal      `json:"monto_total"`
	Estado        string               `json:"estado"`
	Observaciones *string              `json:"observaciones,omitempty"`
	Items         []ItemCompraResponse `json:"items"`
	CreatedAt     string               `json:"created_at"`
}

type CompraListResponse struct {
	Data  []CompraResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
