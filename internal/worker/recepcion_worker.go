package worker

// recepcion_worker.go
// Processes stock-intake jobs from QueueRecepcion: when a compra transitions
// to recibida, each line's quantity is added to the insumo stock inside one
// transaction. Retries with exponential backoff; exhausted jobs go to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ratolibre1/fungus-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const recepcionMaxAttempts = 3

// RecepcionJobPayload is the job envelope sent to QueueRecepcion.
type RecepcionJobPayload struct {
	CompraID string `json:"compra_id"`
}

type RecepcionWorker struct {
	compraRepo repository.CompraRepository
	insumoRepo repository.InsumoRepository
	rdb        *redis.Client
}

func NewRecepcionWorker(compraRepo repository.CompraRepository, insumoRepo repository.InsumoRepository, rdb *redis.Client) *RecepcionWorker {
	return &RecepcionWorker{compraRepo: compraRepo, insumoRepo: insumoRepo, rdb: rdb}
}

// Process applies the stock intake for one received compra.
func (w *RecepcionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload RecepcionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recepcion_worker: invalid payload")
		return
	}
	compraID, err := uuid.Parse(payload.CompraID)
	if err != nil {
		log.Error().Str("compra_id", payload.CompraID).Msg("recepcion_worker: invalid compra_id")
		return
	}

	compra, err := w.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		log.Error().Err(err).Str("compra_id", payload.CompraID).Msg("recepcion_worker: compra not found")
		return
	}

	intakeErr := withRetry(ctx, recepcionMaxAttempts, func(attempt int) error {
		err := w.compraRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, item := range compra.Items {
				if err := w.insumoRepo.AjustarStockTx(tx, item.InsumoID, item.Cantidad); err != nil {
					return fmt.Errorf("insumo %s: %w", item.InsumoID, err)
				}
			}
			return nil
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("compra_id", payload.CompraID).
				Msg("recepcion_worker: intake attempt failed, retrying")
		}
		return err
	})
	if intakeErr != nil {
		log.Error().Err(intakeErr).Str("compra_id", payload.CompraID).Msg("recepcion_worker: intake failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueRecepcion, "recepcion", raw, intakeErr, recepcionMaxAttempts)
		return
	}
	log.Info().
		Str("compra_id", payload.CompraID).
		Int64("correlativo", compra.Correlativo).
		Int("items", len(compra.Items)).
		Msg("recepcion_worker: stock intake applied")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
