package dto

import "github.com/shopspring/decimal"

type InsumoResponse struct {
	ID         string          `json:"id"`
	Nombre     string          `json:"nombre"`
	PrecioNeto decimal.Decimal `json:"precio_neto"`
	Stock      decimal.Decimal `json:"stock"`
	Activo     bool            `json:"activo"`
}

// PrecioInsumoResponse feeds line auto-population in the purchase form.
// Served through the redis read-through cache.
type PrecioInsumoResponse struct {
	InsumoID   string          `json:"insumo_id"`
	Nombre     string          `json:"nombre"`
	PrecioNeto decimal.Decimal `json:"precio_neto"`
}
