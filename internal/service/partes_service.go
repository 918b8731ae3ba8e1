package service

import (
	"context"
	"fmt"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/model"
	"github.com/ratolibre1/fungus-backend/internal/repository"
	"github.com/ratolibre1/fungus-backend/internal/rut"

	"github.com/google/uuid"
)

// PartesService reconciles the two independently-stored role tables
// (proveedores, clientes) into one logical identity keyed by canonical RUT.
// Role records are never merged or deleted as a side effect — only the role
// flags and cross-links are derived.
type PartesService interface {
	CrearProveedor(ctx context.Context, req dto.CrearParteRequest) (*dto.ParteResponse, error)
	CrearCliente(ctx context.Context, req dto.CrearParteRequest) (*dto.ParteResponse, error)
	ListarProveedores(ctx context.Context) ([]dto.ParteResponse, error)
	ListarClientes(ctx context.Context) ([]dto.ParteResponse, error)
	// BuscarCandidatos returns suppliers matching by nombre/RUT plus
	// customers matching whose RUT is not already among the suppliers —
	// surfaced as promotion candidates instead of duplicate-creation ones.
	BuscarCandidatos(ctx context.Context, term string) (*dto.BuscarCandidatosResponse, error)
	PromoverClienteAProveedor(ctx context.Context, clienteID uuid.UUID) (*dto.ParteResponse, error)
	PromoverProveedorACliente(ctx context.Context, proveedorID uuid.UUID) (*dto.ParteResponse, error)
	QuitarRolProveedor(ctx context.Context, proveedorID uuid.UUID) error
	QuitarRolCliente(ctx context.Context, clienteID uuid.UUID) error
}

type partesService struct {
	proveedores repository.ProveedorRepository
	clientes    repository.ClienteRepository
	compras     repository.CompraRepository
	ventas      repository.VentaRepository
}

func NewPartesService(
	proveedores repository.ProveedorRepository,
	clientes repository.ClienteRepository,
	compras repository.CompraRepository,
	ventas repository.VentaRepository,
) PartesService {
	return &partesService{
		proveedores: proveedores,
		clientes:    clientes,
		compras:     compras,
		ventas:      ventas,
	}
}

// ── Creation ─────────────────────────────────────────────────────────────────

func (s *partesService) CrearProveedor(ctx context.Context, req dto.CrearParteRequest) (*dto.ParteResponse, error) {
	canonico, err := normalizarValido(req.RUT)
	if err != nil {
		return nil, err
	}
	existente, exErr := s.proveedores.FindByRUT(ctx, canonico)
	if exErr == nil && existente.Activo {
		return nil, fmt.Errorf("proveedor con RUT %s: %w", rut.Formatear(canonico), apierror.ErrConflictoRol)
	}

	// The same legal entity may already exist as Cliente — derive the
	// cross-links instead of creating a duplicate identity.
	cliente, cliErr := s.clientes.FindByRUT(ctx, canonico)
	vincular := cliErr == nil && cliente.Activo

	var p *model.Proveedor
	if exErr == nil {
		// A demoted record survived for this RUT; the role is re-granted by
		// reactivating it, never by inserting a second row.
		p = existente
		p.Nombre = req.Nombre
		p.Email = req.Email
		p.Telefono = req.Telefono
		p.Direccion = req.Direccion
		p.Activo = true
		p.EsCliente = vincular
		p.ClienteID = nil
		if vincular {
			p.ClienteID = &cliente.ID
		}
		if err := s.proveedores.Update(ctx, p); err != nil {
			return nil, err
		}
	} else {
		p = &model.Proveedor{
			RUT:       canonico,
			Nombre:    req.Nombre,
			Email:     req.Email,
			Telefono:  req.Telefono,
			Direccion: req.Direccion,
			Activo:    true,
		}
		if vincular {
			p.EsCliente = true
			p.ClienteID = &cliente.ID
		}
		if err := s.proveedores.Create(ctx, p); err != nil {
			return nil, err
		}
	}

	if vincular {
		cliente.EsProveedor = true
		cliente.ProveedorID = &p.ID
		if err := s.clientes.Update(ctx, cliente); err != nil {
			return nil, err
		}
		return parteView(p, cliente), nil
	}
	return parteView(p, nil), nil
}

func (s *partesService) CrearCliente(ctx context.Context, req dto.CrearParteRequest) (*dto.ParteResponse, error) {
	canonico, err := normalizarValido(req.RUT)
	if err != nil {
		return nil, err
	}
	existente, exErr := s.clientes.FindByRUT(ctx, canonico)
	if exErr == nil && existente.Activo {
		return nil, fmt.Errorf("cliente con RUT %s: %w", rut.Formatear(canonico), apierror.ErrConflictoRol)
	}

	proveedor, provErr := s.proveedores.FindByRUT(ctx, canonico)
	vincular := provErr == nil && proveedor.Activo

	var c *model.Cliente
	if exErr == nil {
		// Role removal deactivates the row; granting it again reactivates the
		// same row so the RUT keeps a single cliente identity.
		c = existente
		c.Nombre = req.Nombre
		c.Email = req.Email
		c.Telefono = req.Telefono
		c.Direccion = req.Direccion
		c.Activo = true
		c.EsProveedor = vincular
		c.ProveedorID = nil
		if vincular {
			c.ProveedorID = &proveedor.ID
		}
		if err := s.clientes.Update(ctx, c); err != nil {
			return nil, err
		}
	} else {
		c = &model.Cliente{
			RUT:       canonico,
			Nombre:    req.Nombre,
			Email:     req.Email,
			Telefono:  req.Telefono,
			Direccion: req.Direccion,
			Activo:    true,
		}
		if vincular {
			c.EsProveedor = true
			c.ProveedorID = &proveedor.ID
		}
		if err := s.clientes.Create(ctx, c); err != nil {
			return nil, err
		}
	}

	if vincular {
		proveedor.EsCliente = true
		proveedor.ClienteID = &c.ID
		if err := s.proveedores.Update(ctx, proveedor); err != nil {
			return nil, err
		}
		return parteView(proveedor, c), nil
	}
	return parteView(nil, c), nil
}

// ── Candidate search ─────────────────────────────────────────────────────────

func (s *partesService) BuscarCandidatos(ctx context.Context, term string) (*dto.BuscarCandidatosResponse, error) {
	proveedores, err := s.proveedores.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	clientes, err := s.clientes.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	// Canonical-RUT index over suppliers: a customer whose RUT already has a
	// supplier record must never be offered as a "create new supplier"
	// candidate.
	rutsProveedor := make(map[string]bool, len(proveedores))
	resp := &dto.BuscarCandidatosResponse{
		Proveedores:         make([]dto.ParteResponse, 0, len(proveedores)),
		ClientesPromovibles: make([]dto.ParteResponse, 0),
	}
	for i := range proveedores {
		canonico, err := rut.Normalizar(proveedores[i].RUT)
		if err != nil {
			canonico = proveedores[i].RUT
		}
		rutsProveedor[canonico] = true
		resp.Proveedores = append(resp.Proveedores, *parteView(&proveedores[i], nil))
	}
	for i := range clientes {
		canonico, err := rut.Normalizar(clientes[i].RUT)
		if err != nil {
			canonico = clientes[i].RUT
		}
		if rutsProveedor[canonico] {
			continue
		}
		resp.ClientesPromovibles = append(resp.ClientesPromovibles, *parteView(nil, &clientes[i]))
	}
	return resp, nil
}

// ── Promotion / demotion ─────────────────────────────────────────────────────

func (s *partesService) PromoverClienteAProveedor(ctx context.Context, clienteID uuid.UUID) (*dto.ParteResponse, error) {
	cliente, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente %s: %w", clienteID, apierror.ErrNoEncontrado)
	}
	canonico, err := rut.Normalizar(cliente.RUT)
	if err != nil {
		return nil, fmt.Errorf("RUT almacenado %q: %w", cliente.RUT, apierror.ErrFormatoInvalido)
	}
	existente, exErr := s.proveedores.FindByRUT(ctx, canonico)
	if exErr == nil && existente.Activo {
		return nil, fmt.Errorf("RUT %s ya es proveedor: %w", rut.Formatear(canonico), apierror.ErrConflictoRol)
	}

	var p *model.Proveedor
	if exErr == nil {
		// An inactive supplier row already holds this RUT; promotion
		// reactivates it instead of colliding with the unique index.
		p = existente
		p.Nombre = cliente.Nombre
		p.Email = cliente.Email
		p.Telefono = cliente.Telefono
		p.Direccion = cliente.Direccion
		p.EsCliente = true
		p.ClienteID = &cliente.ID
		p.Activo = true
		if err := s.proveedores.Update(ctx, p); err != nil {
			return nil, err
		}
	} else {
		p = &model.Proveedor{
			RUT:       canonico,
			Nombre:    cliente.Nombre,
			Email:     cliente.Email,
			Telefono:  cliente.Telefono,
			Direccion: cliente.Direccion,
			EsCliente: true,
			ClienteID: &cliente.ID,
			Activo:    true,
		}
		if err := s.proveedores.Create(ctx, p); err != nil {
			return nil, err
		}
	}

	cliente.EsProveedor = true
	cliente.ProveedorID = &p.ID
	if err := s.clientes.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return parteView(p, cliente), nil
}

func (s *partesService) PromoverProveedorACliente(ctx context.Context, proveedorID uuid.UUID) (*dto.ParteResponse, error) {
	proveedor, err := s.proveedores.FindByID(ctx, proveedorID)
	if err != nil {
		return nil, fmt.Errorf("proveedor %s: %w", proveedorID, apierror.ErrNoEncontrado)
	}
	canonico, err := rut.Normalizar(proveedor.RUT)
	if err != nil {
		return nil, fmt.Errorf("RUT almacenado %q: %w", proveedor.RUT, apierror.ErrFormatoInvalido)
	}
	existente, exErr := s.clientes.FindByRUT(ctx, canonico)
	if exErr == nil && existente.Activo {
		return nil, fmt.Errorf("RUT %s ya es cliente: %w", rut.Formatear(canonico), apierror.ErrConflictoRol)
	}

	var c *model.Cliente
	if exErr == nil {
		c = existente
		c.Nombre = proveedor.Nombre
		c.Email = proveedor.Email
		c.Telefono = proveedor.Telefono
		c.Direccion = proveedor.Direccion
		c.EsProveedor = true
		c.ProveedorID = &proveedor.ID
		c.Activo = true
		if err := s.clientes.Update(ctx, c); err != nil {
			return nil, err
		}
	} else {
		c = &model.Cliente{
			RUT:         canonico,
			Nombre:      proveedor.Nombre,
			Email:       proveedor.Email,
			Telefono:    proveedor.Telefono,
			Direccion:   proveedor.Direccion,
			EsProveedor: true,
			ProveedorID: &proveedor.ID,
			Activo:      true,
		}
		if err := s.clientes.Create(ctx, c); err != nil {
			return nil, err
		}
	}

	proveedor.EsCliente = true
	proveedor.ClienteID = &c.ID
	if err := s.proveedores.Update(ctx, proveedor); err != nil {
		return nil, err
	}
	return parteView(proveedor, c), nil
}

// QuitarRolProveedor removes the supplier role: the record is deactivated and
// cross-links cleared, never hard-deleted, so historical compras keep a valid
// reference. Removing the LAST role while non-deleted compras still point at
// the record is a policy violation.
func (s *partesService) QuitarRolProveedor(ctx context.Context, proveedorID uuid.UUID) error {
	proveedor, err := s.proveedores.FindByID(ctx, proveedorID)
	if err != nil {
		return fmt.Errorf("proveedor %s: %w", proveedorID, apierror.ErrNoEncontrado)
	}

	if !proveedor.EsCliente {
		historial, err := s.compras.CountActivasByProveedor(ctx, proveedorID)
		if err != nil {
			return err
		}
		if historial > 0 {
			return fmt.Errorf("el proveedor tiene %d compras activas y ningún otro rol: %w",
				historial, apierror.ErrEstadoInvalido)
		}
	}

	if err := s.proveedores.SoftDelete(ctx, proveedorID); err != nil {
		return err
	}
	if proveedor.ClienteID != nil {
		if cliente, err := s.clientes.FindByID(ctx, *proveedor.ClienteID); err == nil {
			cliente.EsProveedor = false
			cliente.ProveedorID = nil
			if err := s.clientes.Update(ctx, cliente); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *partesService) QuitarRolCliente(ctx context.Context, clienteID uuid.UUID) error {
	cliente, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return fmt.Errorf("cliente %s: %w", clienteID, apierror.ErrNoEncontrado)
	}

	if !cliente.EsProveedor {
		historial, err := s.ventas.CountActivasByCliente(ctx, clienteID)
		if err != nil {
			return err
		}
		if historial > 0 {
			return fmt.Errorf("el cliente tiene %d ventas activas y ningún otro rol: %w",
				historial, apierror.ErrEstadoInvalido)
		}
	}

	if err := s.clientes.SoftDelete(ctx, clienteID); err != nil {
		return err
	}
	if cliente.ProveedorID != nil {
		if proveedor, err := s.proveedores.FindByID(ctx, *cliente.ProveedorID); err == nil {
			proveedor.EsCliente = false
			proveedor.ClienteID = nil
			if err := s.proveedores.Update(ctx, proveedor); err != nil {
				return err
			}
		}
	}
	return nil
}

// ── Listing ──────────────────────────────────────────────────────────────────

func (s *partesService) ListarProveedores(ctx context.Context) ([]dto.ParteResponse, error) {
	proveedores, err := s.proveedores.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ParteResponse, 0, len(proveedores))
	for i := range proveedores {
		result = append(result, *parteView(&proveedores[i], nil))
	}
	return result, nil
}

func (s *partesService) ListarClientes(ctx context.Context) ([]dto.ParteResponse, error) {
	clientes, err := s.clientes.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ParteResponse, 0, len(clientes))
	for i := range clientes {
		result = append(result, *parteView(nil, &clientes[i]))
	}
	return result, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func normalizarValido(raw string) (string, error) {
	canonico, err := rut.Normalizar(raw)
	if err != nil {
		return "", fmt.Errorf("RUT %q: %w", raw, apierror.ErrFormatoInvalido)
	}
	if !rut.EsValido(canonico) {
		return "", fmt.Errorf("RUT %q con dígito verificador incorrecto: %w", raw, apierror.ErrFormatoInvalido)
	}
	return canonico, nil
}

// parteView builds the unified Parte view from whichever role records are at
// hand. Either argument may be nil; cross-link flags fill the missing ids.
func parteView(p *model.Proveedor, c *model.Cliente) *dto.ParteResponse {
	view := &dto.ParteResponse{Roles: []string{}}
	if p != nil {
		view.RUT = p.RUT
		view.Nombre = p.Nombre
		view.Email = p.Email
		view.Telefono = p.Telefono
		view.Direccion = p.Direccion
		id := p.ID.String()
		view.ProveedorID = &id
		view.Roles = append(view.Roles, "proveedor")
		if p.EsCliente && p.ClienteID != nil {
			cid := p.ClienteID.String()
			view.ClienteID = &cid
			view.Roles = append(view.Roles, "cliente")
		}
	}
	if c != nil {
		view.RUT = c.RUT
		view.Nombre = c.Nombre
		view.Email = c.Email
		view.Telefono = c.Telefono
		view.Direccion = c.Direccion
		id := c.ID.String()
		view.ClienteID = &id
		if p == nil {
			view.Roles = append(view.Roles, "cliente")
			if c.EsProveedor && c.ProveedorID != nil {
				pid := c.ProveedorID.String()
				view.ProveedorID = &pid
				view.Roles = append([]string{"proveedor"}, view.Roles...)
			}
		}
	}
	view.RUTFormateado = rut.Formatear(view.RUT)
	return view
}
