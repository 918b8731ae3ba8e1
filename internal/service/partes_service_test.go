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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProveedorRepo is an in-memory ProveedorRepository for testing.
type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProveedorRepo) FindByRUT(_ context.Context, rutCanonico string) (*model.Proveedor, error) {
	for _, p := range r.proveedores {
		if p.RUT == rutCanonico {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) {
	out := make([]model.Proveedor, 0, len(r.proveedores))
	for _, p := range r.proveedores {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProveedorRepo) Search(_ context.Context, _ string) ([]model.Proveedor, error) {
	// The stub returns everything active; term filtering is the DB's job.
	return r.List(context.Background())
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	if _, ok := r.proveedores[p.ID]; !ok {
		return errors.New("not found")
	}
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.proveedores[id]
	if !ok {
		return errors.New("not found")
	}
	p.Activo = false
	return nil
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)

// stubClienteRepo mirrors stubProveedorRepo for the customer role table.
type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubClienteRepo) FindByRUT(_ context.Context, rutCanonico string) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.RUT == rutCanonico {
			return c, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubClienteRepo) List(_ context.Context) ([]model.Cliente, error) {
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Search(_ context.Context, _ string) ([]model.Cliente, error) {
	return r.List(context.Background())
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	if _, ok := r.clientes[c.ID]; !ok {
		return errors.New("not found")
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.clientes[id]
	if !ok {
		return errors.New("not found")
	}
	c.Activo = false
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

// stubVentaRepo returns a fixed count for the demote guard.
type stubVentaRepo struct{ activas int64 }

func (r *stubVentaRepo) CountActivasByCliente(_ context.Context, _ uuid.UUID) (int64, error) {
	return r.activas, nil
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

func newPartesFixture() (*stubProveedorRepo, *stubClienteRepo, *stubCompraRepo, *stubVentaRepo, PartesService) {
	provRepo := newStubProveedorRepo()
	cliRepo := newStubClienteRepo()
	compraRepo := newStubCompraRepo()
	ventaRepo := &stubVentaRepo{}
	svc := NewPartesService(provRepo, cliRepo, compraRepo, ventaRepo)
	return provRepo, cliRepo, compraRepo, ventaRepo, svc
}

// Valid RUTs for fixtures: 12345678-5 and 11111111-1.
const (
	rutUno = "12.345.678-5"
	rutDos = "11.111.111-1"
)

// ── Creation ──────────────────────────────────────────────────────────────────

func TestCrearProveedorCanonicalizaRUT(t *testing.T) {
	_, _, _, _, svc := newPartesFixture()

	resp, err := svc.CrearProveedor(context.Background(), dto.CrearParteRequest{
		RUT: rutUno, Nombre: "Sustratos del Sur",
	})
	require.NoError(t, err)
	assert.Equal(t, "123456785", resp.RUT)
	assert.Equal(t, "12.345.678-5", resp.RUTFormateado)
	assert.Equal(t, []string{"proveedor"}, resp.Roles)
}

func TestCrearProveedorRechazaDigitoVerificadorMalo(t *testing.T) {
	_, _, _, _, svc := newPartesFixture()

	_, err := svc.CrearProveedor(context.Background(), dto.CrearParteRequest{
		RUT: "12.345.678-6", Nombre: "Sustratos del Sur",
	})
	assert.ErrorIs(t, err, apierror.ErrFormatoInvalido)
}

func TestCrearProveedorDuplicadoPorRUT(t *testing.T) {
	_, _, _, _, svc := newPartesFixture()

	_, err := svc.CrearProveedor(context.Background(), dto.CrearParteRequest{RUT: rutUno, Nombre: "A"})
	require.NoError(t, err)

	// Same entity, different formatting: still one identity.
	_, err = svc.CrearProveedor(context.Background(), dto.CrearParteRequest{RUT: "123456785", Nombre: "B"})
	assert.ErrorIs(t, err, apierror.ErrConflictoRol)
}

func TestCrearProveedorEnlazaClienteExistente(t *testing.T) {
	provRepo, cliRepo, _, _, svc := newPartesFixture()

	cliResp, err := svc.CrearCliente(context.Background(), dto.CrearParteRequest{RUT: rutUno, Nombre: "Hongos Verdes"})
	require.NoError(t, err)

	resp, err := svc.CrearProveedor(context.Background(), dto.CrearParteRequest{RUT: rutUno, Nombre: "Hongos Verdes"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"proveedor", "cliente"}, resp.Roles)
	assert.Equal(t, *cliResp.ClienteID, *resp.ClienteID)

	// Both stored records carry the cross-link.
	cliID := uuid.MustParse(*cliResp.ClienteID)
	cliente, err := cliRepo.FindByID(context.Background(), cliID)
	require.NoError(t, err)
	assert.True(t, cliente.EsProveedor)
	require.NotNil(t, cliente.ProveedorID)
	proveedor, err := provRepo.FindByID(context.Background(), *cliente.ProveedorID)
	require.NoError(t, err)
	assert.True(t, proveedor.EsCliente)
}

// ── Candidate search ──────────────────────────────────────────────────────────

func TestBuscarCandidatosExcluyeClientesQueYaSonProveedores(t *testing.T) {
	_, _, _, _, svc := newPartesFixture()
	ctx := context.Background()

	// rutUno exists in both tables; rutDos only as cliente.
	_, err := svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)
	_, err = svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)
	_, err = svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutDos, Nombre: "Solo Cliente"})
	require.NoError(t, err)

	resp, err := svc.BuscarCandidatos(ctx, "cliente")
	require.NoError(t, err)
	require.Len(t, resp.Proveedores, 1)
	require.Len(t, resp.ClientesPromovibles, 1)
	assert.Equal(t, "111111111", resp.ClientesPromovibles[0].RUT)
}

// ── Promotion ─────────────────────────────────────────────────────────────────

func TestPromoverClienteAProveedor(t *testing.T) {
	provRepo, _, _, _, svc := newPartesFixture()
	ctx := context.Background()

	cliResp, err := svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Hongos Verdes"})
	require.NoError(t, err)
	cliID := uuid.MustParse(*cliResp.ClienteID)

	resp, err := svc.PromoverClienteAProveedor(ctx, cliID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"proveedor", "cliente"}, resp.Roles)
	assert.Equal(t, "Hongos Verdes", resp.Nombre)

	// After the promotion the RUT is no longer a promotable candidate.
	busca, err := svc.BuscarCandidatos(ctx, "hongos")
	require.NoError(t, err)
	assert.Len(t, busca.Proveedores, 1)
	assert.Empty(t, busca.ClientesPromovibles)

	p, err := provRepo.FindByRUT(ctx, "123456785")
	require.NoError(t, err)
	assert.True(t, p.EsCliente)
}

func TestPromoverClienteYaProveedorFalla(t *testing.T) {
	_, _, _, _, svc := newPartesFixture()
	ctx := context.Background()

	_, err := svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)
	cliResp, err := svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)

	_, err = svc.PromoverClienteAProveedor(ctx, uuid.MustParse(*cliResp.ClienteID))
	assert.ErrorIs(t, err, apierror.ErrConflictoRol)
}

func TestPromoverClienteInexistente(t *testing.T) {
	_, _, _, _, svc := newPartesFixture()
	_, err := svc.PromoverClienteAProveedor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

// ── Demotion ──────────────────────────────────────────────────────────────────

func TestQuitarRolProveedorConHistorialYSinOtroRol(t *testing.T) {
	_, _, compraRepo, _, svc := newPartesFixture()
	ctx := context.Background()

	resp, err := svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Sustratos"})
	require.NoError(t, err)
	provID := uuid.MustParse(*resp.ProveedorID)

	compraRepo.activasPorProveedor[provID] = 3
	err = svc.QuitarRolProveedor(ctx, provID)
	assert.ErrorIs(t, err, apierror.ErrEstadoInvalido)
}

func TestQuitarRolProveedorConOtroRolLimpiaEnlaces(t *testing.T) {
	provRepo, cliRepo, compraRepo, _, svc := newPartesFixture()
	ctx := context.Background()

	_, err := svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)
	resp, err := svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)
	provID := uuid.MustParse(*resp.ProveedorID)

	// History exists, but the cliente role survives, so the demote is legal.
	compraRepo.activasPorProveedor[provID] = 2
	require.NoError(t, svc.QuitarRolProveedor(ctx, provID))

	p, err := provRepo.FindByID(ctx, provID)
	require.NoError(t, err)
	assert.False(t, p.Activo)

	c, err := cliRepo.FindByRUT(ctx, "123456785")
	require.NoError(t, err)
	assert.False(t, c.EsProveedor)
	assert.Nil(t, c.ProveedorID)
	assert.True(t, c.Activo)
}

func TestQuitarRolProveedorSinHistorial(t *testing.T) {
	provRepo, _, _, _, svc := newPartesFixture()
	ctx := context.Background()

	resp, err := svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Sustratos"})
	require.NoError(t, err)
	provID := uuid.MustParse(*resp.ProveedorID)

	require.NoError(t, svc.QuitarRolProveedor(ctx, provID))
	p, err := provRepo.FindByID(ctx, provID)
	require.NoError(t, err)
	assert.False(t, p.Activo)
}

// ── Re-grant after demotion ───────────────────────────────────────────────────

func TestCrearProveedorReactivaRegistroDemovido(t *testing.T) {
	provRepo, _, _, _, svc := newPartesFixture()
	ctx := context.Background()

	resp, err := svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Sustratos"})
	require.NoError(t, err)
	provID := uuid.MustParse(*resp.ProveedorID)
	require.NoError(t, svc.QuitarRolProveedor(ctx, provID))

	// The demoted record must be reactivated, not duplicated: the rut column
	// carries a unique index.
	resp, err = svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Sustratos Renacidos"})
	require.NoError(t, err)
	assert.Equal(t, provID.String(), *resp.ProveedorID)
	assert.Len(t, provRepo.proveedores, 1)

	p, err := provRepo.FindByID(ctx, provID)
	require.NoError(t, err)
	assert.True(t, p.Activo)
	assert.Equal(t, "Sustratos Renacidos", p.Nombre)
}

func TestCrearClienteReactivaRegistroDemovido(t *testing.T) {
	_, cliRepo, _, _, svc := newPartesFixture()
	ctx := context.Background()

	resp, err := svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Hongos"})
	require.NoError(t, err)
	cliID := uuid.MustParse(*resp.ClienteID)
	require.NoError(t, svc.QuitarRolCliente(ctx, cliID))

	resp, err = svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Hongos"})
	require.NoError(t, err)
	assert.Equal(t, cliID.String(), *resp.ClienteID)
	assert.Len(t, cliRepo.clientes, 1)
}

func TestPromoverClienteReutilizaProveedorInactivo(t *testing.T) {
	provRepo, cliRepo, _, _, svc := newPartesFixture()
	ctx := context.Background()

	provResp, err := svc.CrearProveedor(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)
	provID := uuid.MustParse(*provResp.ProveedorID)
	require.NoError(t, svc.QuitarRolProveedor(ctx, provID))

	cliResp, err := svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Dual"})
	require.NoError(t, err)
	cliID := uuid.MustParse(*cliResp.ClienteID)

	resp, err := svc.PromoverClienteAProveedor(ctx, cliID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"proveedor", "cliente"}, resp.Roles)
	assert.Equal(t, provID.String(), *resp.ProveedorID)
	assert.Len(t, provRepo.proveedores, 1)

	p, err := provRepo.FindByID(ctx, provID)
	require.NoError(t, err)
	assert.True(t, p.Activo)
	require.NotNil(t, p.ClienteID)
	assert.Equal(t, cliID, *p.ClienteID)

	c, err := cliRepo.FindByID(ctx, cliID)
	require.NoError(t, err)
	assert.True(t, c.EsProveedor)
}

func TestQuitarRolClienteConVentasYSinOtroRol(t *testing.T) {
	_, _, _, ventaRepo, svc := newPartesFixture()
	ctx := context.Background()

	resp, err := svc.CrearCliente(ctx, dto.CrearParteRequest{RUT: rutUno, Nombre: "Hongos"})
	require.NoError(t, err)

	ventaRepo.activas = 1
	err = svc.QuitarRolCliente(ctx, uuid.MustParse(*resp.ClienteID))
	assert.ErrorIs(t, err, apierror.ErrEstadoInvalido)
}
