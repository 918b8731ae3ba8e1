package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const precioCacheTTL = 4 * time.Hour

type InsumosHandler struct {
	repo repository.InsumoRepository
	rdb  *redis.Client
}

func NewInsumosHandler(repo repository.InsumoRepository, rdb *redis.Client) *InsumosHandler {
	return &InsumosHandler{repo: repo, rdb: rdb}
}

// Listar godoc
// @Summary      Listar insumos activos
// @Tags         insumos
// @Produce      json
// @Success      200 {array} dto.InsumoResponse
// @Router       /v1/insumos [get]
func (h *InsumosHandler) Listar(c *gin.Context) {
	insumos, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar insumos"))
		return
	}
	resp := make([]dto.InsumoResponse, 0, len(insumos))
	for _, i := range insumos {
		resp = append(resp, dto.InsumoResponse{
			ID:         i.ID.String(),
			Nombre:     i.Nombre,
			PrecioNeto: i.PrecioNeto,
			Stock:      i.Stock,
			Activo:     i.Activo,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPrecio godoc
// @Summary      Consulta de precio de un insumo
// @Description  Alimenta el autocompletado de lineas del formulario de compra. Lectura cacheada en redis.
// @Tags         insumos
// @Produce      json
// @Param        id path string true "UUID del insumo"
// @Success      200 {object} dto.PrecioInsumoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/insumos/{id}/precio [get]
func (h *InsumosHandler) ObtenerPrecio(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	ctx := c.Request.Context()
	cacheKey := "precio:insumo:" + id.String()

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PrecioInsumoResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	insumo, err := h.repo.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Insumo no encontrado"))
		return
	}

	resp := dto.PrecioInsumoResponse{
		InsumoID:   insumo.ID.String(),
		Nombre:     insumo.Nombre,
		PrecioNeto: insumo.PrecioNeto,
	}

	// Populate cache, best effort.
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, precioCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
