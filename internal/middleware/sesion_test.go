package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSesionLeeHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(InyectarSesion())

	var visto string
	r.GET("/x", func(c *gin.Context) {
		visto = GetSesion(c).Usuario
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Usuario", "operador@fungus.cl")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operador@fungus.cl", visto)
}

// A context that never passed through InyectarSesion yields an anonymous
// session instead of panicking.
func TestGetSesionSinInyectarEsAnonima(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	var s *Sesion
	require.NotPanics(t, func() { s = GetSesion(c) })
	require.NotNil(t, s)
	assert.Empty(t, s.Usuario)
}
