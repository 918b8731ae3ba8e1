package handler

import (
	"net/http"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PartesHandler struct{ svc service.PartesService }

func NewPartesHandler(svc service.PartesService) *PartesHandler { return &PartesHandler{svc: svc} }

// BuscarCandidatos godoc
// @Summary      Buscar proveedores y clientes promovibles
// @Description  Retorna proveedores que calzan por nombre/RUT más clientes cuyo RUT aún no existe entre los proveedores.
// @Tags         partes
// @Produce      json
// @Param        q query string true "Término de búsqueda (nombre o RUT)"
// @Success      200 {object} dto.BuscarCandidatosResponse
// @Router       /v1/partes/buscar [get]
func (h *PartesHandler) BuscarCandidatos(c *gin.Context) {
	term := c.Query("q")
	resp, err := h.svc.BuscarCandidatos(c.Request.Context(), term)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al buscar candidatos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearProveedor godoc
// @Summary      Crear proveedor
// @Description  El RUT se canonicaliza y valida por dígito verificador antes de persistir.
// @Tags         partes
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearParteRequest true "Datos del proveedor"
// @Success      201  {object} dto.ParteResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/proveedores [post]
func (h *PartesHandler) CrearProveedor(c *gin.Context) {
	var req dto.CrearParteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearProveedor(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CrearCliente godoc
// @Summary      Crear cliente
// @Tags         partes
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearParteRequest true "Datos del cliente"
// @Success      201  {object} dto.ParteResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/clientes [post]
func (h *PartesHandler) CrearCliente(c *gin.Context) {
	var req dto.CrearParteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCliente(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarProveedores godoc
// @Summary      Listar proveedores activos
// @Tags         partes
// @Produce      json
// @Success      200 {array} dto.ParteResponse
// @Router       /v1/proveedores [get]
func (h *PartesHandler) ListarProveedores(c *gin.Context) {
	resp, err := h.svc.ListarProveedores(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar proveedores"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarClientes godoc
// @Summary      Listar clientes activos
// @Tags         partes
// @Produce      json
// @Success      200 {array} dto.ParteResponse
// @Router       /v1/clientes [get]
func (h *PartesHandler) ListarClientes(c *gin.Context) {
	resp, err := h.svc.ListarClientes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar clientes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarRolProveedor godoc
// @Summary      Promover un cliente a proveedor
// @Description  Crea el registro de proveedor copiando los datos del cliente y enlaza ambos registros. Falla si el RUT ya es proveedor.
// @Tags         partes
// @Produce      json
// @Param        id path string true "UUID del cliente"
// @Success      200 {object} dto.ParteResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/contactos/{id}/agregar-rol-proveedor [patch]
func (h *PartesHandler) AgregarRolProveedor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.PromoverClienteAProveedor(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarRolCliente godoc
// @Summary      Promover un proveedor a cliente
// @Tags         partes
// @Produce      json
// @Param        id path string true "UUID del proveedor"
// @Success      200 {object} dto.ParteResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/contactos/{id}/agregar-rol-cliente [patch]
func (h *PartesHandler) AgregarRolCliente(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.PromoverProveedorACliente(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QuitarRolProveedor godoc
// @Summary      Quitar el rol proveedor
// @Description  Desactiva el registro y limpia los enlaces cruzados; el historial de compras se conserva.
// @Tags         partes
// @Produce      json
// @Param        id path string true "UUID del proveedor"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/contactos/{id}/quitar-rol-proveedor [patch]
func (h *PartesHandler) QuitarRolProveedor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.QuitarRolProveedor(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// QuitarRolCliente godoc
// @Summary      Quitar el rol cliente
// @Tags         partes
// @Produce      json
// @Param        id path string true "UUID del cliente"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/contactos/{id}/quitar-rol-cliente [patch]
func (h *PartesHandler) QuitarRolCliente(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.QuitarRolCliente(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
