package middleware

import (
	"github.com/gin-gonic/gin"
)

const SesionKey = "sesion"

// Sesion is the per-request actor identity. It is injected explicitly into
// the context instead of living in ambient global state, so services stay
// free of hidden dependencies. Token verification is out of scope here —
// the gateway in front of this service owns it.
type Sesion struct {
	Usuario string
}

// InyectarSesion reads the actor identity from the X-Usuario header and
// attaches a Sesion to the request context. Absent header yields an
// anonymous session; handlers that need an actor check for it themselves.
func InyectarSesion() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(SesionKey, &Sesion{Usuario: c.GetHeader("X-Usuario")})
		c.Next()
	}
}

// GetSesion retrieves the typed session from the Gin context. A request that
// skipped InyectarSesion is treated as anonymous, never as a failure.
func GetSesion(c *gin.Context) *Sesion {
	if v, ok := c.Get(SesionKey); ok {
		if s, ok := v.(*Sesion); ok {
			return s
		}
	}
	return &Sesion{}
}
