// cmd/previsor/main.go — Previsualiza los totales de un borrador de compra
// contra el servidor, con caída al cálculo local si no responde.
// Uso: go run cmd/previsor/main.go -archivo borrador.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ratolibre1/fungus-backend/internal/infra"
	"github.com/ratolibre1/fungus-backend/internal/model"
	"github.com/ratolibre1/fungus-backend/internal/money"
	"github.com/ratolibre1/fungus-backend/internal/preview"
	"github.com/ratolibre1/fungus-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// archivoBorrador is the on-disk draft shape consumed by this tool.
type archivoBorrador struct {
	TipoDocumento string           `json:"tipo_documento"`
	TasaIVA       *decimal.Decimal `json:"tasa_iva"`
	Lineas        []struct {
		InsumoID       string           `json:"insumo_id"`
		Nombre         string           `json:"nombre"`
		PrecioUnitario decimal.Decimal  `json:"precio_unitario"`
		Cantidad       decimal.Decimal  `json:"cantidad"`
		Descuento      *decimal.Decimal `json:"descuento"`
	} `json:"lineas"`
}

func main() {
	archivo := flag.String("archivo", "borrador.json", "borrador de compra en JSON")
	flag.Parse()

	baseURL := os.Getenv("AUTORIDAD_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	data, err := os.ReadFile(*archivo)
	if err != nil {
		log.Fatalf("no se pudo leer %s: %v", *archivo, err)
	}
	var af archivoBorrador
	if err := json.Unmarshal(data, &af); err != nil {
		log.Fatalf("JSON inválido: %v", err)
	}

	b := service.NuevoBorrador()
	if af.TipoDocumento != "" {
		b.TipoDocumento = af.TipoDocumento
	}
	if af.TasaIVA != nil {
		b.TasaIVA = *af.TasaIVA
	}
	for _, l := range af.Lineas {
		id, err := uuid.Parse(l.InsumoID)
		if err != nil {
			log.Fatalf("insumo_id inválido %q: %v", l.InsumoID, err)
		}
		i := b.AgregarLinea()
		insumo := &model.Insumo{ID: id, Nombre: l.Nombre, PrecioNeto: l.PrecioUnitario, Activo: true}
		if err := b.SeleccionarInsumo(i, insumo); err != nil {
			log.Fatal(err)
		}
		if !l.Cantidad.IsZero() {
			_ = b.SetCantidad(i, l.Cantidad)
		}
		if l.Descuento != nil {
			_ = b.SetDescuento(i, *l.Descuento)
		}
	}

	auth := infra.NewAutoridadClient(baseURL, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	listo := make(chan money.Totales, 1)
	sinc := preview.NewSincronizador(auth, preview.VentanaDefault, func(t money.Totales) {
		listo <- t
	})
	sinc.Programar(b)
	tot := <-listo
	sinc.Detener()

	fmt.Printf("Neto:  $%s\n", tot.MontoNeto)
	fmt.Printf("IVA:   $%s\n", tot.MontoIVA)
	fmt.Printf("Total: $%s\n", tot.MontoTotal)
}
