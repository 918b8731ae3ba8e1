package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSubtotalLinea(t *testing.T) {
	assert.True(t, d("2000").Equal(SubtotalLinea(d("2"), d("1000"), decimal.Zero)))
	assert.True(t, d("400").Equal(SubtotalLinea(d("1"), d("500"), d("100"))))
	// Discount larger than the line floors at zero, never negative.
	assert.True(t, decimal.Zero.Equal(SubtotalLinea(d("1"), d("500"), d("900"))))
	// Fractional quantity (e.g. 1.5 kg of sustrato).
	assert.True(t, d("1500").Equal(SubtotalLinea(d("1.5"), d("1000"), decimal.Zero)))
}

func TestTotalesDocumento(t *testing.T) {
	// 2 x 1000 + (1 x 500 - 100) = 2400 neto, IVA 19% = 456, total 2856.
	subs := []decimal.Decimal{
		SubtotalLinea(d("2"), d("1000"), decimal.Zero),
		SubtotalLinea(d("1"), d("500"), d("100")),
	}
	tot := TotalesDocumento(subs, TasaIVADefault)
	assert.True(t, d("2400").Equal(tot.MontoNeto), "neto %s", tot.MontoNeto)
	assert.True(t, d("456").Equal(tot.MontoIVA), "iva %s", tot.MontoIVA)
	assert.True(t, d("2856").Equal(tot.MontoTotal), "total %s", tot.MontoTotal)
}

func TestTotalesDocumentoRedondeaIVA(t *testing.T) {
	// 333 * 0.19 = 63.27 → whole-peso IVA 63, total 396.
	tot := TotalesDocumento([]decimal.Decimal{d("333")}, TasaIVADefault)
	assert.True(t, d("63").Equal(tot.MontoIVA), "iva %s", tot.MontoIVA)
	assert.True(t, d("396").Equal(tot.MontoTotal), "total %s", tot.MontoTotal)
}

func TestTotalesDocumentoVacio(t *testing.T) {
	tot := TotalesDocumento(nil, TasaIVADefault)
	assert.True(t, tot.MontoNeto.IsZero())
	assert.True(t, tot.MontoIVA.IsZero())
	assert.True(t, tot.MontoTotal.IsZero())
}

func TestParseMonto(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1234", "1234"},
		{"1234.5", "1234.5"},
		{"1234,5", "1234.5"}, // comma as decimal separator
		{" 99 ", "99"},
		{"12.", "12"}, // trailing separator mid-typing
		{"12,", "12"},
		{"", "0"},
		{",", "0"},
		{"-", "0"},
		{"-.", "0"},
		{"abc", "0"},
		{"-50", "-50"},
	}
	for _, tc := range cases {
		got := ParseMonto(tc.in)
		assert.True(t, d(tc.want).Equal(got), "input %q: got %s", tc.in, got)
	}
}
