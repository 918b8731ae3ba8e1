// Package rut validates and formats Chilean RUTs (rol único tributario).
// The canonical form — digits plus uppercase verifier, no dots, no dash — is
// the identity key for every proveedor/cliente comparison, so everything that
// compares RUTs must go through Normalizar first.
package rut

import (
	"strings"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
)

// Normalizar strips display formatting and returns the canonical form:
// body digits followed by the uppercase verifier character.
// Returns ErrFormatoInvalido when, after stripping, the body is empty or
// contains non-digits. Idempotent on already-canonical input.
func Normalizar(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteRune('K')
		}
	}
	s := b.String()
	if len(s) < 2 {
		return "", apierror.ErrFormatoInvalido
	}
	// Everything before the verifier must be numeric ('K' only allowed last).
	if strings.ContainsRune(s[:len(s)-1], 'K') {
		return "", apierror.ErrFormatoInvalido
	}
	return s, nil
}

// DigitoVerificador computes the mod-11 check character for a digit body.
// Digits are weighted right-to-left with 2,3,4,5,6,7 repeating.
func DigitoVerificador(body string) byte {
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

// EsValido reports whether raw normalizes successfully and its verifier
// matches the mod-11 checksum of the body.
func EsValido(raw string) bool {
	s, err := Normalizar(raw)
	if err != nil {
		return false
	}
	return s[len(s)-1] == DigitoVerificador(s[:len(s)-1])
}

// Formatear renders a RUT for display: thousands-grouped body, dash,
// verifier (12345678-5 → 12.345.678-5). It never fails — incomplete input
// gets best-effort partial formatting because this also drives the live
// typing mask. Already-formatted input is a no-op.
func Formatear(raw string) string {
	var clean strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == 'k' || r == 'K' {
			if r == 'k' {
				r = 'K'
			}
			clean.WriteRune(r)
		}
	}
	s := clean.String()
	if s == "" {
		return ""
	}
	if len(s) == 1 {
		return s
	}
	body, dv := s[:len(s)-1], s[len(s)-1:]
	var out strings.Builder
	for i, c := range []byte(body) {
		if i > 0 && (len(body)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteByte(c)
	}
	out.WriteByte('-')
	out.WriteString(dv)
	return out.String()
}

// Iguales compares two raw RUTs by canonical form. Unparseable input never
// equals anything, including itself.
func Iguales(a, b string) bool {
	ca, errA := Normalizar(a)
	cb, errB := Normalizar(b)
	if errA != nil || errB != nil {
		return false
	}
	return ca == cb
}
