package service

import (
	"fmt"

	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/model"
	"github.com/ratolibre1/fungus-backend/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefInsumo holds an insumo reference in one of two explicit variants:
// unresolved (only the id is known) or resolved (the record was fetched).
// Callers check Resuelto() instead of duck-typing the field.
type RefInsumo struct {
	ID     uuid.UUID
	Insumo *model.Insumo
}

func (r RefInsumo) Resuelto() bool { return r.Insumo != nil }
func (r RefInsumo) Vacia() bool    { return r.ID == uuid.Nil && r.Insumo == nil }

// LineaBorrador is one editable draft line. Subtotal is derived and
// recomputed by every mutador — never set directly.
type LineaBorrador struct {
	Insumo         RefInsumo
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
	Descuento      decimal.Decimal
	Subtotal       decimal.Decimal
}

// BorradorCompra is the in-edit purchase document owned by a single form
// session. It carries no persistence concerns: Crear/Actualizar receive its
// wire form via ARequest.
type BorradorCompra struct {
	TipoDocumento string
	Fecha         string
	ProveedorID   uuid.UUID
	TasaIVA       decimal.Decimal
	Observaciones *string
	Lineas        []LineaBorrador
}

func NuevoBorrador() *BorradorCompra {
	return &BorradorCompra{
		TipoDocumento: "factura",
		TasaIVA:       money.TasaIVADefault,
	}
}

// AgregarLinea appends an empty line and returns its index.
func (b *BorradorCompra) AgregarLinea() int {
	b.Lineas = append(b.Lineas, LineaBorrador{})
	return len(b.Lineas) - 1
}

func (b *BorradorCompra) QuitarLinea(i int) error {
	if i < 0 || i >= len(b.Lineas) {
		return fmt.Errorf("línea %d fuera de rango", i)
	}
	b.Lineas = append(b.Lineas[:i], b.Lineas[i+1:]...)
	return nil
}

// SeleccionarInsumo resolves a line's reference: the unit price defaults to
// the insumo's net price and the quantity to 1 when previously zero.
func (b *BorradorCompra) SeleccionarInsumo(i int, insumo *model.Insumo) error {
	if i < 0 || i >= len(b.Lineas) {
		return fmt.Errorf("línea %d fuera de rango", i)
	}
	l := &b.Lineas[i]
	l.Insumo = RefInsumo{ID: insumo.ID, Insumo: insumo}
	l.PrecioUnitario = insumo.PrecioNeto
	if l.Cantidad.IsZero() {
		l.Cantidad = decimal.NewFromInt(1)
	}
	l.recalcular()
	return nil
}

// LimpiarInsumo clears the reference and resets the whole line.
func (b *BorradorCompra) LimpiarInsumo(i int) error {
	if i < 0 || i >= len(b.Lineas) {
		return fmt.Errorf("línea %d fuera de rango", i)
	}
	b.Lineas[i] = LineaBorrador{}
	return nil
}

func (b *BorradorCompra) SetCantidad(i int, v decimal.Decimal) error {
	if i < 0 || i >= len(b.Lineas) {
		return fmt.Errorf("línea %d fuera de rango", i)
	}
	b.Lineas[i].Cantidad = v
	b.Lineas[i].recalcular()
	return nil
}

func (b *BorradorCompra) SetPrecioUnitario(i int, v decimal.Decimal) error {
	if i < 0 || i >= len(b.Lineas) {
		return fmt.Errorf("línea %d fuera de rango", i)
	}
	b.Lineas[i].PrecioUnitario = v
	b.Lineas[i].recalcular()
	return nil
}

func (b *BorradorCompra) SetDescuento(i int, v decimal.Decimal) error {
	if i < 0 || i >= len(b.Lineas) {
		return fmt.Errorf("línea %d fuera de rango", i)
	}
	b.Lineas[i].Descuento = v
	b.Lineas[i].recalcular()
	return nil
}

func (l *LineaBorrador) recalcular() {
	l.Subtotal = money.SubtotalLinea(l.Cantidad, l.PrecioUnitario, l.Descuento)
}

// LineasActivas returns the lines with a resolved reference and positive
// quantity — the only ones that participate in preview and submit.
func (b *BorradorCompra) LineasActivas() []LineaBorrador {
	activas := make([]LineaBorrador, 0, len(b.Lineas))
	for _, l := range b.Lineas {
		if l.Insumo.Resuelto() && l.Cantidad.IsPositive() {
			activas = append(activas, l)
		}
	}
	return activas
}

// SubtotalesActivos feeds the local fallback computation.
func (b *BorradorCompra) SubtotalesActivos() []decimal.Decimal {
	activas := b.LineasActivas()
	subs := make([]decimal.Decimal, len(activas))
	for i, l := range activas {
		subs[i] = l.Subtotal
	}
	return subs
}

// APreviewRequest builds the wire body for the totals authority. A zero
// descuento is omitted entirely, not serialized as 0.
func (b *BorradorCompra) APreviewRequest() dto.PreviewCompraRequest {
	tasa := b.TasaIVA
	req := dto.PreviewCompraRequest{
		TipoDocumento: b.TipoDocumento,
		TasaIVA:       &tasa,
	}
	for _, l := range b.LineasActivas() {
		req.Items = append(req.Items, lineaToRequest(l))
	}
	return req
}

// ARequest builds the submit body.
func (b *BorradorCompra) ARequest() dto.CrearCompraRequest {
	tasa := b.TasaIVA
	req := dto.CrearCompraRequest{
		TipoDocumento: b.TipoDocumento,
		Fecha:         b.Fecha,
		ProveedorID:   b.ProveedorID.String(),
		TasaIVA:       &tasa,
		Observaciones: b.Observaciones,
	}
	for _, l := range b.LineasActivas() {
		req.Items = append(req.Items, lineaToRequest(l))
	}
	return req
}

func lineaToRequest(l LineaBorrador) dto.ItemCompraRequest {
	it := dto.ItemCompraRequest{
		InsumoID:       l.Insumo.ID.String(),
		Cantidad:       l.Cantidad,
		PrecioUnitario: l.PrecioUnitario,
	}
	if !l.Descuento.IsZero() {
		d := l.Descuento
		it.Descuento = &d
	}
	return it
}
