package worker

// notificacion_worker.go
// Sends a best-effort email to the proveedor contact when one of their
// compras reaches a terminal estado.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ratolibre1/fungus-backend/internal/infra"
	"github.com/ratolibre1/fungus-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificacionJobPayload is the job envelope sent to QueueNotificacion.
type NotificacionJobPayload struct {
	CompraID    string `json:"compra_id"`
	Correlativo string `json:"correlativo"`
	Estado      string `json:"estado"`
}

type NotificacionWorker struct {
	mailer        *infra.Mailer
	proveedorRepo repository.ProveedorRepository
	compraRepo    repository.CompraRepository
}

func NewNotificacionWorker(mailer *infra.Mailer, proveedorRepo repository.ProveedorRepository, compraRepo repository.CompraRepository) *NotificacionWorker {
	return &NotificacionWorker{mailer: mailer, proveedorRepo: proveedorRepo, compraRepo: compraRepo}
}

func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotificacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return
	}
	compraID, err := uuid.Parse(payload.CompraID)
	if err != nil {
		log.Error().Str("compra_id", payload.CompraID).Msg("notificacion_worker: invalid compra_id")
		return
	}

	compra, err := w.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		log.Error().Err(err).Str("compra_id", payload.CompraID).Msg("notificacion_worker: compra not found")
		return
	}
	proveedor, err := w.proveedorRepo.FindByID(ctx, compra.ProveedorID)
	if err != nil {
		log.Error().Err(err).Str("compra_id", payload.CompraID).Msg("notificacion_worker: proveedor not found")
		return
	}
	if proveedor.Email == nil || *proveedor.Email == "" {
		log.Debug().Str("compra_id", payload.CompraID).Msg("notificacion_worker: proveedor sin email — skipping")
		return
	}

	subject := fmt.Sprintf("Compra #%s — %s", payload.Correlativo, payload.Estado)
	body := fmt.Sprintf(
		"La compra #%s (%s) por un total de $%s ha sido marcada como %s.",
		payload.Correlativo, compra.TipoDocumento, compra.MontoTotal.StringFixed(0), payload.Estado,
	)
	if err := w.mailer.Send(*proveedor.Email, subject, body); err != nil {
		log.Error().Err(err).Str("to", *proveedor.Email).Msg("notificacion_worker: failed to send email")
		return
	}
	log.Info().Str("to", *proveedor.Email).Str("compra_id", payload.CompraID).Msg("notificacion_worker: notificacion sent")
}
