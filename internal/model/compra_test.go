package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{CompraPendiente, CompraRecibida, true},
		{CompraPendiente, CompraRechazada, true},
		{CompraPendiente, CompraPendiente, false}, // self-transition
		{CompraRecibida, CompraRechazada, false},  // terminal estados are frozen
		{CompraRecibida, CompraPendiente, false},
		{CompraRechazada, CompraRecibida, false},
		{CompraRechazada, CompraPendiente, false},
		{"inexistente", CompraRecibida, false},
		{CompraPendiente, "inexistente", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestEstadoTerminal(t *testing.T) {
	assert.False(t, EstadoTerminal(CompraPendiente))
	assert.True(t, EstadoTerminal(CompraRecibida))
	assert.True(t, EstadoTerminal(CompraRechazada))
	assert.False(t, EstadoTerminal("inexistente"))
}

func TestEstadoConocido(t *testing.T) {
	assert.True(t, EstadoConocido(CompraPendiente))
	assert.True(t, EstadoConocido(CompraRecibida))
	assert.True(t, EstadoConocido(CompraRechazada))
	assert.False(t, EstadoConocido(""))
	assert.False(t, EstadoConocido("anulada"))
}
