package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/model"
	"github.com/ratolibre1/fungus-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubCompraRepo is an in-memory CompraRepository for testing.
type stubCompraRepo struct {
	compras             map[uuid.UUID]*model.Compra
	correlativoSeq      int64
	activasPorProveedor map[uuid.UUID]int64
}

func newStubCompraRepo() *stubCompraRepo {
	return &stubCompraRepo{
		compras:             make(map[uuid.UUID]*model.Compra),
		activasPorProveedor: make(map[uuid.UUID]int64),
	}
}

func (r *stubCompraRepo) DB() *gorm.DB { return nil }

func (r *stubCompraRepo) Create(_ context.Context, _ *gorm.DB, c *model.Compra) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.compras[c.ID] = c
	return nil
}

func (r *stubCompraRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Compra, error) {
	c, ok := r.compras[id]
	if !ok || c.Eliminada {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubCompraRepo) List(_ context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error) {
	out := make([]model.Compra, 0, len(r.compras))
	for _, c := range r.compras {
		if c.Eliminada {
			continue
		}
		if filter.Estado != "" && filter.Estado != "all" && c.Estado != filter.Estado {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompraRepo) NextCorrelativo(_ context.Context, _ *gorm.DB) (int64, error) {
	r.correlativoSeq++
	return r.correlativoSeq, nil
}

func (r *stubCompraRepo) UpdateTx(_ *gorm.DB, c *model.Compra) error {
	if _, ok := r.compras[c.ID]; !ok {
		return errors.New("not found")
	}
	r.compras[c.ID] = c
	return nil
}

func (r *stubCompraRepo) ReplaceItemsTx(_ *gorm.DB, compraID uuid.UUID, items []model.CompraItem) error {
	c, ok := r.compras[compraID]
	if !ok {
		return errors.New("not found")
	}
	c.Items = items
	return nil
}

func (r *stubCompraRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	c, ok := r.compras[id]
	if !ok {
		return errors.New("not found")
	}
	c.Estado = estado
	return nil
}

func (r *stubCompraRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.compras[id]
	if !ok {
		return errors.New("not found")
	}
	c.Eliminada = true
	return nil
}

func (r *stubCompraRepo) CountActivasByProveedor(_ context.Context, proveedorID uuid.UUID) (int64, error) {
	return r.activasPorProveedor[proveedorID], nil
}

var _ repository.CompraRepository = (*stubCompraRepo)(nil)

// stubInsumoRepo serves a fixed catalog.
type stubInsumoRepo struct {
	insumos map[uuid.UUID]*model.Insumo
}

func newStubInsumoRepo() *stubInsumoRepo {
	return &stubInsumoRepo{insumos: make(map[uuid.UUID]*model.Insumo)}
}

func (r *stubInsumoRepo) add(nombre string, precio decimal.Decimal) uuid.UUID {
	id := uuid.New()
	r.insumos[id] = &model.Insumo{ID: id, Nombre: nombre, PrecioNeto: precio, Activo: true}
	return id
}

func (r *stubInsumoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Insumo, error) {
	i, ok := r.insumos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return i, nil
}

func (r *stubInsumoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Insumo, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubInsumoRepo) List(_ context.Context) ([]model.Insumo, error) {
	out := make([]model.Insumo, 0, len(r.insumos))
	for _, i := range r.insumos {
		out = append(out, *i)
	}
	return out, nil
}

func (r *stubInsumoRepo) AjustarStockTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	i, ok := r.insumos[id]
	if !ok {
		return errors.New("not found")
	}
	i.Stock = i.Stock.Add(delta)
	return nil
}

var _ repository.InsumoRepository = (*stubInsumoRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type compraFixture struct {
	repo        *stubCompraRepo
	proveedores *stubProveedorRepo
	insumos     *stubInsumoRepo
	svc         CompraService
	proveedorID uuid.UUID
	insumoA     uuid.UUID
	insumoB     uuid.UUID
}

func newCompraFixture(t *testing.T) *compraFixture {
	t.Helper()
	repo := newStubCompraRepo()
	provRepo := newStubProveedorRepo()
	insumoRepo := newStubInsumoRepo()

	proveedor := &model.Proveedor{RUT: "123456785", Nombre: "Sustratos del Sur", Activo: true}
	require.NoError(t, provRepo.Create(context.Background(), proveedor))

	return &compraFixture{
		repo:        repo,
		proveedores: provRepo,
		insumos:     insumoRepo,
		svc:         NewCompraService(repo, provRepo, insumoRepo, nil),
		proveedorID: proveedor.ID,
		insumoA:     insumoRepo.add("Sustrato estéril 5kg", decimal.NewFromInt(1000)),
		insumoB:     insumoRepo.add("Micelio ostra", decimal.NewFromInt(500)),
	}
}

func (f *compraFixture) requestValida() dto.CrearCompraRequest {
	descuento := decimal.NewFromInt(100)
	return dto.CrearCompraRequest{
		TipoDocumento: "factura",
		Fecha:         "2026-08-15",
		ProveedorID:   f.proveedorID.String(),
		Items: []dto.ItemCompraRequest{
			{InsumoID: f.insumoA.String(), Cantidad: decimal.NewFromInt(2), PrecioUnitario: decimal.NewFromInt(1000)},
			{InsumoID: f.insumoB.String(), Cantidad: decimal.NewFromInt(1), PrecioUnitario: decimal.NewFromInt(500), Descuento: &descuento},
		},
	}
}

// ── Preview ───────────────────────────────────────────────────────────────────

func TestPreviewCalculaTotales(t *testing.T) {
	f := newCompraFixture(t)

	resp, err := f.svc.Preview(context.Background(), dto.PreviewCompraRequest{
		TipoDocumento: "factura",
		Items:         f.requestValida().Items,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2400).Equal(resp.MontoNeto), "neto %s", resp.MontoNeto)
	assert.True(t, decimal.NewFromInt(456).Equal(resp.MontoIVA), "iva %s", resp.MontoIVA)
	assert.True(t, decimal.NewFromInt(2856).Equal(resp.MontoTotal), "total %s", resp.MontoTotal)
	require.Len(t, resp.Items, 2)
	assert.True(t, decimal.NewFromInt(2000).Equal(resp.Items[0].Subtotal))
	assert.True(t, decimal.NewFromInt(400).Equal(resp.Items[1].Subtotal))
}

func TestPreviewSinItems(t *testing.T) {
	f := newCompraFixture(t)
	resp, err := f.svc.Preview(context.Background(), dto.PreviewCompraRequest{TipoDocumento: "boleta"})
	require.NoError(t, err)
	assert.True(t, resp.MontoTotal.IsZero())
	assert.Empty(t, resp.Items)
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func TestCrearCompra(t *testing.T) {
	f := newCompraFixture(t)

	resp, err := f.svc.Crear(context.Background(), f.requestValida())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Correlativo)
	assert.Equal(t, model.CompraPendiente, resp.Estado)
	assert.Equal(t, "Sustratos del Sur", resp.Proveedor)
	assert.True(t, decimal.NewFromInt(2856).Equal(resp.MontoTotal))

	// Correlativo advances per document.
	resp2, err := f.svc.Crear(context.Background(), f.requestValida())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp2.Correlativo)
}

func TestCrearCompraCamposInvalidos(t *testing.T) {
	f := newCompraFixture(t)

	req := dto.CrearCompraRequest{
		TipoDocumento: "factura",
		Fecha:         "15/08/2026", // wrong format
		ProveedorID:   uuid.New().String(),
		Items: []dto.ItemCompraRequest{
			{InsumoID: "no-es-uuid", Cantidad: decimal.NewFromInt(1), PrecioUnitario: decimal.NewFromInt(100)},
			{InsumoID: f.insumoA.String(), Cantidad: decimal.Zero, PrecioUnitario: decimal.NewFromInt(-5)},
		},
	}
	_, err := f.svc.Crear(context.Background(), req)

	var campos *apierror.CamposInvalidos
	require.ErrorAs(t, err, &campos)
	assert.Contains(t, campos.Fields, "proveedor_id")
	assert.Contains(t, campos.Fields, "fecha")
	assert.Contains(t, campos.Fields, "items.0.insumo_id")
	assert.Contains(t, campos.Fields, "items.1.cantidad")
	assert.Contains(t, campos.Fields, "items.1.precio_unitario")
}

func TestCrearCompraSinItems(t *testing.T) {
	f := newCompraFixture(t)
	req := f.requestValida()
	req.Items = nil

	_, err := f.svc.Crear(context.Background(), req)
	var campos *apierror.CamposInvalidos
	require.ErrorAs(t, err, &campos)
	assert.Contains(t, campos.Fields, "items")
}

// ── Actualizar ────────────────────────────────────────────────────────────────

func TestActualizarCompraPendiente(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	created, err := f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	req := f.requestValida()
	req.Items = req.Items[:1] // drop the discounted line
	resp, err := f.svc.Actualizar(ctx, id, req)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2000).Equal(resp.MontoNeto))
	assert.True(t, decimal.NewFromInt(2380).Equal(resp.MontoTotal))
	// Correlativo is assigned once and survives edits.
	assert.Equal(t, created.Correlativo, resp.Correlativo)
}

func TestActualizarCompraRecibidaFalla(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	created, err := f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.svc.CambiarEstado(ctx, id, model.CompraRecibida)
	require.NoError(t, err)

	_, err = f.svc.Actualizar(ctx, id, f.requestValida())
	assert.ErrorIs(t, err, apierror.ErrEstadoInvalido)
}

// ── CambiarEstado ─────────────────────────────────────────────────────────────

func TestCambiarEstadoTransicionesValidas(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	for _, destino := range []string{model.CompraRecibida, model.CompraRechazada} {
		created, err := f.svc.Crear(ctx, f.requestValida())
		require.NoError(t, err)
		resp, err := f.svc.CambiarEstado(ctx, uuid.MustParse(created.ID), destino)
		require.NoError(t, err)
		assert.Equal(t, destino, resp.Estado)
	}
}

func TestCambiarEstadoDesdeTerminalFalla(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	created, err := f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.svc.CambiarEstado(ctx, id, model.CompraRecibida)
	require.NoError(t, err)
	_, err = f.svc.CambiarEstado(ctx, id, model.CompraRechazada)
	assert.ErrorIs(t, err, apierror.ErrEstadoInvalido)
}

func TestCambiarEstadoDesconocido(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	created, err := f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	_, err = f.svc.CambiarEstado(ctx, uuid.MustParse(created.ID), "anulada")
	assert.ErrorIs(t, err, apierror.ErrEstadoInvalido)
}

func TestCambiarEstadoCompraInexistente(t *testing.T) {
	f := newCompraFixture(t)
	_, err := f.svc.CambiarEstado(context.Background(), uuid.New(), model.CompraRecibida)
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func TestEliminarCompraPendiente(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	created, err := f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, f.svc.Eliminar(ctx, id))
	_, err = f.svc.ObtenerPorID(ctx, id)
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestEliminarCompraTerminalFalla(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	created, err := f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.svc.CambiarEstado(ctx, id, model.CompraRechazada)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Eliminar(ctx, id), apierror.ErrEstadoInvalido)
}

// ── Listar ────────────────────────────────────────────────────────────────────

func TestListarFiltraPorEstado(t *testing.T) {
	f := newCompraFixture(t)
	ctx := context.Background()

	a, err := f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	_, err = f.svc.Crear(ctx, f.requestValida())
	require.NoError(t, err)
	_, err = f.svc.CambiarEstado(ctx, uuid.MustParse(a.ID), model.CompraRecibida)
	require.NoError(t, err)

	lista, err := f.svc.Listar(ctx, dto.CompraFilter{Estado: model.CompraPendiente})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.Total)

	todas, err := f.svc.Listar(ctx, dto.CompraFilter{Estado: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), todas.Total)
}
