package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearParteRequest creates a role record explicitly (POST /v1/proveedores or
// POST /v1/clientes). The RUT may arrive formatted; the service canonicalizes
// and checksum-validates it before anything touches storage.
type CrearParteRequest struct {
	RUT       string  `json:"rut"    validate:"required"`
	Nombre    string  `json:"nombre" validate:"required,min=2"`
	Email     *string `json:"email"  validate:"omitempty,email"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ParteResponse is the unified view of a legal entity across both role
// tables. RUT is canonical; RUTFormateado is for display only.
type ParteResponse struct {
	RUT           string   `json:"rut"`
	RUTFormateado string   `json:"rut_formateado"`
	Nombre        string   `json:"nombre"`
	Email         *string  `json:"email,omitempty"`
	Telefono      *string  `json:"telefono,omitempty"`
	Direccion     *string  `json:"direccion,omitempty"`
	Roles         []string `json:"roles"` // "proveedor" and/or "cliente"
	ProveedorID   *string  `json:"proveedor_id,omitempty"`
	ClienteID     *string  `json:"cliente_id,omitempty"`
}

// BuscarCandidatosResponse separates existing suppliers from customers that
// could be promoted instead of creating a duplicate supplier record.
type BuscarCandidatosResponse struct {
	Proveedores         []ParteResponse `json:"proveedores"`
	ClientesPromovibles []ParteResponse `json:"clientes_promovibles"`
}
