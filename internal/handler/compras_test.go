package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompraService answers Preview with zero totals and records the request
// it received; everything else is unused by these tests.
type fakeCompraService struct {
	previewReq *dto.PreviewCompraRequest
}

func (f *fakeCompraService) Preview(_ context.Context, req dto.PreviewCompraRequest) (*dto.PreviewCompraResponse, error) {
	f.previewReq = &req
	return &dto.PreviewCompraResponse{
		MontoNeto:  decimal.Zero,
		MontoIVA:   decimal.Zero,
		MontoTotal: decimal.Zero,
		Items:      []dto.ItemCompraResponse{},
	}, nil
}

func (f *fakeCompraService) Crear(context.Context, dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	return nil, nil
}

func (f *fakeCompraService) ObtenerPorID(context.Context, uuid.UUID) (*dto.CompraResponse, error) {
	return nil, nil
}

func (f *fakeCompraService) Listar(context.Context, dto.CompraFilter) (*dto.CompraListResponse, error) {
	return nil, nil
}

func (f *fakeCompraService) Actualizar(context.Context, uuid.UUID, dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	return nil, nil
}

func (f *fakeCompraService) CambiarEstado(context.Context, uuid.UUID, string) (*dto.CompraResponse, error) {
	return nil, nil
}

func (f *fakeCompraService) Eliminar(context.Context, uuid.UUID) error { return nil }

var _ service.CompraService = (*fakeCompraService)(nil)

func newPreviewRouter() (*fakeCompraService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	fake := &fakeCompraService{}
	r := gin.New()
	r.POST("/v1/compras/preview", NewComprasHandler(fake).Preview)
	return fake, r
}

func postPreview(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/compras/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// An empty draft is a legal preview; the endpoint must not reject what the
// totals engine answers with zeros.
func TestPreviewAceptaBorradorSinItems(t *testing.T) {
	fake, r := newPreviewRouter()

	w := postPreview(t, r, `{"tipo_documento":"boleta","items":[]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, fake.previewReq)
	assert.Empty(t, fake.previewReq.Items)

	var resp dto.PreviewCompraResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.MontoTotal.IsZero())
}

func TestPreviewAceptaItemsAusentes(t *testing.T) {
	_, r := newPreviewRouter()

	w := postPreview(t, r, `{"tipo_documento":"factura"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPreviewRechazaTipoDocumentoInvalido(t *testing.T) {
	_, r := newPreviewRouter()

	w := postPreview(t, r, `{"tipo_documento":"guia","items":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}
