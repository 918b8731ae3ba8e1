// Package apierror provides standardized error response structures for the API
// plus the domain error taxonomy shared by services and handlers. All errors
// returned to clients go through this package to ensure consistency and to
// prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "errors"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors so the client can highlight
// each offending field instead of showing one opaque message.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Sentinel domain errors. Services wrap these with %w; handlers map them to
// HTTP statuses via errors.Is.
var (
	// ErrFormatoInvalido: malformed RUT or unparseable numeric input.
	ErrFormatoInvalido = errors.New("formato invalido")
	// ErrEstadoInvalido: operation attempted against a document or role in a
	// state that forbids it. Rejected before touching storage.
	ErrEstadoInvalido = errors.New("estado invalido para la operacion")
	// ErrConflictoRol: a promotion would duplicate an identity for a RUT
	// that already holds the target role.
	ErrConflictoRol = errors.New("el RUT ya posee ese rol")
	// ErrAutoridadNoDisponible: transport/server failure against the remote
	// totals authority. Preview degrades to the local fallback; persistence
	// surfaces it as retryable.
	ErrAutoridadNoDisponible = errors.New("autoridad de calculo no disponible")
	// ErrNoEncontrado: requested record does not exist or is soft-deleted.
	ErrNoEncontrado = errors.New("registro no encontrado")
)

// CamposInvalidos is the error services return from draft validation: one
// entry per failing field, keyed like "items.2.cantidad".
type CamposInvalidos struct {
	Fields map[string]string
}

func (e *CamposInvalidos) Error() string { return "error de validacion" }
