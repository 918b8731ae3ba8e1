package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/model"
	"github.com/ratolibre1/fungus-backend/internal/money"
	"github.com/ratolibre1/fungus-backend/internal/repository"
	"github.com/ratolibre1/fungus-backend/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompraService interface {
	// Preview is the authoritative totals computation: nothing persisted,
	// numerically identical to the local fallback by construction.
	Preview(ctx context.Context, req dto.PreviewCompraRequest) (*dto.PreviewCompraResponse, error)
	Crear(ctx context.Context, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	Listar(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, nuevo string) (*dto.CompraResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type compraService struct {
	repo        repository.CompraRepository
	proveedores repository.ProveedorRepository
	insumos     repository.InsumoRepository
	dispatcher  *worker.Dispatcher
}

func NewCompraService(
	repo repository.CompraRepository,
	proveedores repository.ProveedorRepository,
	insumos repository.InsumoRepository,
	dispatcher *worker.Dispatcher,
) CompraService {
	return &compraService{
		repo:        repo,
		proveedores: proveedores,
		insumos:     insumos,
		dispatcher:  dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Preview ──────────────────────────────────────────────────────────────────

func (s *compraService) Preview(ctx context.Context, req dto.PreviewCompraRequest) (*dto.PreviewCompraResponse, error) {
	tasa := money.TasaIVADefault
	if req.TasaIVA != nil {
		tasa = *req.TasaIVA
	}

	items := make([]dto.ItemCompraResponse, 0, len(req.Items))
	subtotales := make([]decimal.Decimal, 0, len(req.Items))
	for _, it := range req.Items {
		descuento := decimal.Zero
		if it.Descuento != nil {
			descuento = *it.Descuento
		}
		sub := money.SubtotalLinea(it.Cantidad, it.PrecioUnitario, descuento)
		subtotales = append(subtotales, sub)
		items = append(items, dto.ItemCompraResponse{
			InsumoID:       it.InsumoID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Descuento:      descuento,
			Subtotal:       sub,
		})
	}

	totales := money.TotalesDocumento(subtotales, tasa)
	return &dto.PreviewCompraResponse{
		MontoNeto:  totales.MontoNeto,
		MontoIVA:   totales.MontoIVA,
		MontoTotal: totales.MontoTotal,
		Items:      items,
	}, nil
}

// ── Crear ────────────────────────────────────────────────────────────────────

// itemResuelto is a draft line after reference resolution, ready to persist.
type itemResuelto struct {
	insumoID  uuid.UUID
	nombre    string
	cantidad  decimal.Decimal
	precio    decimal.Decimal
	descuento decimal.Decimal
	subtotal  decimal.Decimal
}

func (s *compraService) Crear(ctx context.Context, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	resolved, proveedor, fecha, verr := s.validar(ctx, req)
	if verr != nil {
		return nil, verr
	}

	tasa := money.TasaIVADefault
	if req.TasaIVA != nil {
		tasa = *req.TasaIVA
	}
	subtotales := make([]decimal.Decimal, len(resolved))
	for i, r := range resolved {
		subtotales[i] = r.subtotal
	}
	totales := money.TotalesDocumento(subtotales, tasa)

	var compra model.Compra
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		correlativo, err := s.repo.NextCorrelativo(ctx, tx)
		if err != nil {
			return err
		}
		compra = model.Compra{
			TipoDocumento: req.TipoDocumento,
			Correlativo:   correlativo,
			Fecha:         fecha,
			ProveedorID:   proveedor.ID,
			TasaIVA:       tasa,
			MontoNeto:     totales.MontoNeto,
			MontoIVA:      totales.MontoIVA,
			MontoTotal:    totales.MontoTotal,
			Estado:        model.CompraPendiente,
			Observaciones: req.Observaciones,
		}
		for _, r := range resolved {
			compra.Items = append(compra.Items, model.CompraItem{
				InsumoID:       r.insumoID,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				Descuento:      r.descuento,
				Subtotal:       r.subtotal,
			})
		}
		return s.repo.Create(ctx, tx, &compra)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := compraToResponse(&compra)
	resp.Proveedor = proveedor.Nombre
	for i, r := range resolved {
		resp.Items[i].Insumo = r.nombre
	}
	return resp, nil
}

// ── Actualizar ───────────────────────────────────────────────────────────────

func (s *compraService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("compra %s: %w", id, apierror.ErrNoEncontrado)
	}
	if compra.Estado != model.CompraPendiente {
		return nil, fmt.Errorf("compra en estado %q no admite edición: %w",
			compra.Estado, apierror.ErrEstadoInvalido)
	}

	resolved, proveedor, fecha, verr := s.validar(ctx, req)
	if verr != nil {
		return nil, verr
	}

	tasa := money.TasaIVADefault
	if req.TasaIVA != nil {
		tasa = *req.TasaIVA
	}
	subtotales := make([]decimal.Decimal, len(resolved))
	for i, r := range resolved {
		subtotales[i] = r.subtotal
	}
	totales := money.TotalesDocumento(subtotales, tasa)

	items := make([]model.CompraItem, 0, len(resolved))
	for _, r := range resolved {
		items = append(items, model.CompraItem{
			InsumoID:       r.insumoID,
			Cantidad:       r.cantidad,
			PrecioUnitario: r.precio,
			Descuento:      r.descuento,
			Subtotal:       r.subtotal,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra.TipoDocumento = req.TipoDocumento
		compra.Fecha = fecha
		compra.ProveedorID = proveedor.ID
		compra.TasaIVA = tasa
		compra.MontoNeto = totales.MontoNeto
		compra.MontoIVA = totales.MontoIVA
		compra.MontoTotal = totales.MontoTotal
		compra.Observaciones = req.Observaciones
		if err := s.repo.UpdateTx(tx, compra); err != nil {
			return err
		}
		return s.repo.ReplaceItemsTx(tx, compra.ID, items)
	})
	if txErr != nil {
		return nil, txErr
	}

	compra.Items = items
	resp := compraToResponse(compra)
	resp.Proveedor = proveedor.Nombre
	for i, r := range resolved {
		resp.Items[i].Insumo = r.nombre
	}
	return resp, nil
}

// ── CambiarEstado ────────────────────────────────────────────────────────────

// CambiarEstado applies a lifecycle transition. Illegal transitions are
// rejected here, before anything reaches storage; a valid transition changes
// the estado field and nothing else.
func (s *compraService) CambiarEstado(ctx context.Context, id uuid.UUID, nuevo string) (*dto.CompraResponse, error) {
	if !model.EstadoConocido(nuevo) {
		return nil, fmt.Errorf("estado %q desconocido: %w", nuevo, apierror.ErrEstadoInvalido)
	}
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("compra %s: %w", id, apierror.ErrNoEncontrado)
	}
	if !model.CanTransition(compra.Estado, nuevo) {
		return nil, fmt.Errorf("transición %s → %s no permitida: %w",
			compra.Estado, nuevo, apierror.ErrEstadoInvalido)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateEstadoTx(tx, id, nuevo)
	})
	if txErr != nil {
		return nil, txErr
	}
	compra.Estado = nuevo

	// Async side effects after commit — best-effort, fire & forget.
	if s.dispatcher != nil {
		if nuevo == model.CompraRecibida {
			_ = s.dispatcher.EnqueueRecepcion(ctx, map[string]interface{}{
				"compra_id": compra.ID.String(),
			})
		}
		if model.EstadoTerminal(nuevo) {
			_ = s.dispatcher.EnqueueNotificacion(ctx, map[string]interface{}{
				"compra_id":   compra.ID.String(),
				"correlativo": strconv.FormatInt(compra.Correlativo, 10),
				"estado":      nuevo,
			})
		}
	}
	return compraToResponse(compra), nil
}

// ── Eliminar / lectura ───────────────────────────────────────────────────────

func (s *compraService) Eliminar(ctx context.Context, id uuid.UUID) error {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("compra %s: %w", id, apierror.ErrNoEncontrado)
	}
	if compra.Estado != model.CompraPendiente {
		return fmt.Errorf("compra en estado %q no admite eliminación: %w",
			compra.Estado, apierror.ErrEstadoInvalido)
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *compraService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("compra %s: %w", id, apierror.ErrNoEncontrado)
	}
	return compraToResponse(compra), nil
}

func (s *compraService) Listar(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	compras, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		data = append(data, *compraToResponse(&compras[i]))
	}
	return &dto.CompraListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Validation ───────────────────────────────────────────────────────────────

// validar applies the business rules with one keyed error per failing field,
// never a single opaque failure, so forms can highlight exact fields.
func (s *compraService) validar(ctx context.Context, req dto.CrearCompraRequest) ([]itemResuelto, *model.Proveedor, time.Time, error) {
	fields := make(map[string]string)

	var proveedor *model.Proveedor
	pid, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		fields["proveedor_id"] = "debe seleccionar un proveedor"
	} else if proveedor, err = s.proveedores.FindByID(ctx, pid); err != nil || !proveedor.Activo {
		proveedor = nil
		fields["proveedor_id"] = "proveedor no encontrado"
	}

	var fecha time.Time
	if fecha, err = time.Parse("2006-01-02", req.Fecha); err != nil {
		if fecha, err = time.Parse(time.RFC3339, req.Fecha); err != nil {
			fields["fecha"] = "fecha inválida (se espera ISO-8601)"
		}
	}

	if len(req.Items) == 0 {
		fields["items"] = "la compra requiere al menos un ítem"
	}

	resolved := make([]itemResuelto, 0, len(req.Items))
	for i, it := range req.Items {
		prefix := "items." + strconv.Itoa(i) + "."
		iid, err := uuid.Parse(it.InsumoID)
		if err != nil {
			fields[prefix+"insumo_id"] = "debe seleccionar un insumo"
			continue
		}
		insumo, err := s.insumos.FindByID(ctx, iid)
		if err != nil || !insumo.Activo {
			fields[prefix+"insumo_id"] = "insumo no encontrado"
			continue
		}
		if !it.Cantidad.IsPositive() {
			fields[prefix+"cantidad"] = "la cantidad debe ser mayor a cero"
		}
		if it.PrecioUnitario.IsNegative() {
			fields[prefix+"precio_unitario"] = "el precio no puede ser negativo"
		}
		descuento := decimal.Zero
		if it.Descuento != nil {
			descuento = *it.Descuento
		}
		if descuento.IsNegative() {
			fields[prefix+"descuento"] = "el descuento no puede ser negativo"
		}
		resolved = append(resolved, itemResuelto{
			insumoID:  iid,
			nombre:    insumo.Nombre,
			cantidad:  it.Cantidad,
			precio:    it.PrecioUnitario,
			descuento: descuento,
			subtotal:  money.SubtotalLinea(it.Cantidad, it.PrecioUnitario, descuento),
		})
	}

	if len(fields) > 0 {
		return nil, nil, time.Time{}, &apierror.CamposInvalidos{Fields: fields}
	}
	return resolved, proveedor, fecha, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	items := make([]dto.ItemCompraResponse, 0, len(c.Items))
	for _, it := range c.Items {
		nombre := ""
		if it.Insumo != nil {
			nombre = it.Insumo.Nombre
		}
		items = append(items, dto.ItemCompraResponse{
			InsumoID:       it.InsumoID.String(),
			Insumo:         nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Descuento:      it.Descuento,
			Subtotal:       it.Subtotal,
		})
	}
	nombreProveedor := ""
	if c.Proveedor != nil {
		nombreProveedor = c.Proveedor.Nombre
	}
	return &dto.CompraResponse{
		ID:            c.ID.String(),
		TipoDocumento: c.TipoDocumento,
		Correlativo:   c.Correlativo,
		Fecha:         c.Fecha.Format("2006-01-02"),
		ProveedorID:   c.ProveedorID.String(),
		Proveedor:     nombreProveedor,
		TasaIVA:       c.TasaIVA,
		MontoNeto:     c.MontoNeto,
		MontoIVA:      c.MontoIVA,
		MontoTotal:    c.MontoTotal,
		Estado:        c.Estado,
		Observaciones: c.Observaciones,
		Items:         items,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}
