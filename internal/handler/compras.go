package handler

import (
	"net/http"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/middleware"
	"github.com/ratolibre1/fungus-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler { return &ComprasHandler{svc: svc} }

// Preview godoc
// @Summary      Calcular totales de una compra en borrador
// @Description  Cálculo autoritativo de neto/IVA/total. No persiste nada.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Param        body body dto.PreviewCompraRequest true "Borrador de la compra"
// @Success      200  {object} dto.PreviewCompraResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/compras/preview [post]
func (h *ComprasHandler) Preview(c *gin.Context) {
	var req dto.PreviewCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary      Registrar una compra
// @Description  Crea una compra en estado pendiente; el correlativo se asigna en el servidor.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearCompraRequest true "Detalle de la compra"
// @Success      201  {object} dto.CompraResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/compras [post]
func (h *ComprasHandler) Crear(c *gin.Context) {
	var req dto.CrearCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar compras
// @Tags         compras
// @Produce      json
// @Param        estado query string false "pendiente | recibida | rechazada | all"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200    {object} dto.CompraListResponse
// @Router       /v1/compras [get]
func (h *ComprasHandler) Listar(c *gin.Context) {
	var filter dto.CompraFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar compras"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener una compra
// @Tags         compras
// @Produce      json
// @Param        id path string true "UUID de la compra"
// @Success      200 {object} dto.CompraResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/compras/{id} [get]
func (h *ComprasHandler) ObtenerPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar una compra pendiente
// @Description  Solo compras en estado pendiente admiten edición.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Param        id   path string               true "UUID de la compra"
// @Param        body body dto.CrearCompraRequest true "Detalle actualizado"
// @Success      200  {object} dto.CompraResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/compras/{id} [put]
func (h *ComprasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CrearCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary      Cambiar el estado de una compra
// @Description  Transiciones válidas: pendiente→recibida, pendiente→rechazada. Una transición ilegal nunca llega a la base de datos.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Param        id   path string                  true "UUID de la compra"
// @Param        body body dto.CambiarEstadoRequest true "Nuevo estado"
// @Success      200  {object} dto.CompraResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/compras/{id}/estado [patch]
func (h *ComprasHandler) CambiarEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CambiarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), id, req.Estado)
	if err != nil {
		writeError(c, err)
		return
	}
	log.Info().
		Str("compra_id", id.String()).
		Str("estado", req.Estado).
		Str("usuario", middleware.GetSesion(c).Usuario).
		Msg("estado de compra cambiado")
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar (soft) una compra pendiente
// @Tags         compras
// @Produce      json
// @Param        id path string true "UUID de la compra"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/compras/{id} [delete]
func (h *ComprasHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	log.Info().
		Str("compra_id", id.String()).
		Str("usuario", middleware.GetSesion(c).Usuario).
		Msg("compra eliminada")
	c.Status(http.StatusNoContent)
}
