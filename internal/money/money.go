// Package money holds the document calculation engine: line subtotals and the
// net/IVA/total triple. Amounts are whole-unit CLP — Round(0) everywhere,
// there is no fractional peso on the wire.
//
// The preview endpoint and the local preview fallback both call into this
// package, which is what guarantees they can never disagree for the same
// input.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TasaIVADefault is the standard Chilean VAT rate.
var TasaIVADefault = decimal.NewFromFloat(0.19)

// Totales is the derived triple of a document. The three fields are always
// recomputed together — never patch one of them independently.
type Totales struct {
	MontoNeto  decimal.Decimal `json:"monto_neto"`
	MontoIVA   decimal.Decimal `json:"monto_iva"`
	MontoTotal decimal.Decimal `json:"monto_total"`
}

// SubtotalLinea computes cantidad*precioUnitario - descuento, floored at
// zero. Descuento is an absolute CLP amount, not a percentage.
func SubtotalLinea(cantidad decimal.Decimal, precioUnitario, descuento decimal.Decimal) decimal.Decimal {
	sub := cantidad.Mul(precioUnitario).Sub(descuento)
	if sub.IsNegative() {
		return decimal.Zero
	}
	return sub
}

// TotalesDocumento sums line subtotals into the net amount, applies tasaIVA
// rounded to whole pesos, and returns the triple.
func TotalesDocumento(subtotales []decimal.Decimal, tasaIVA decimal.Decimal) Totales {
	neto := decimal.Zero
	for _, s := range subtotales {
		neto = neto.Add(s)
	}
	iva := neto.Mul(tasaIVA).Round(0)
	return Totales{
		MontoNeto:  neto,
		MontoIVA:   iva,
		MontoTotal: neto.Add(iva),
	}
}

// ParseMonto converts user-typed amounts. Comma is accepted as decimal
// separator; in-progress strings ("12,", ",", "-", "") yield zero instead of
// an error so a form never blocks mid-edit.
func ParseMonto(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || s == "." || s == "-" || s == "-." {
		return decimal.Zero
	}
	// Trailing separator while still typing: "12." parses as 12.
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
