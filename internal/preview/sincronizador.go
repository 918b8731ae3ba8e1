// Package preview keeps a locally-estimated purchase total in sync with the
// authoritative server computation. Edits are debounced into at most one
// request per quiet window; responses that arrive after a newer request was
// issued are discarded, so the displayed totals always reflect the latest
// edit regardless of response-arrival order.
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/ratolibre1/fungus-backend/internal/dto"
	"github.com/ratolibre1/fungus-backend/internal/money"
	"github.com/ratolibre1/fungus-backend/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// VentanaDefault is the quiet period between the last edit and the request.
const VentanaDefault = 500 * time.Millisecond

// Authority computes document totals remotely. infra.AutoridadClient is the
// production implementation; tests substitute fakes.
type Authority interface {
	Preview(ctx context.Context, req dto.PreviewCompraRequest) (*dto.PreviewCompraResponse, error)
}

// Sincronizador debounces draft edits into preview requests. Totals flow out
// through the callback; Ultimos always returns the last accepted value so the
// form never flickers to zero while a request is in flight.
type Sincronizador struct {
	auth      Authority
	ventana   time.Duration
	onTotales func(money.Totales)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64 // sequence of the latest issued request
	ultimos money.Totales
	done    sync.WaitGroup
}

func NewSincronizador(auth Authority, ventana time.Duration, onTotales func(money.Totales)) *Sincronizador {
	if ventana <= 0 {
		ventana = VentanaDefault
	}
	if onTotales == nil {
		onTotales = func(money.Totales) {}
	}
	return &Sincronizador{auth: auth, ventana: ventana, onTotales: onTotales}
}

// solicitud is an immutable snapshot of the draft taken at scheduling time;
// the borrador keeps mutating underneath while the timer runs.
type solicitud struct {
	req        dto.PreviewCompraRequest
	subtotales []decimal.Decimal
	tasa       decimal.Decimal
	activa     bool
}

// Programar (re)schedules a recomputation after the quiet window. Call it on
// every change to items, tipo de documento or tasa; only the last call within
// the window produces a request.
func (s *Sincronizador) Programar(b *service.BorradorCompra) {
	snap := solicitud{
		req:        b.APreviewRequest(),
		subtotales: b.SubtotalesActivos(),
		tasa:       b.TasaIVA,
		activa:     len(b.LineasActivas()) > 0,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil && s.timer.Stop() {
		// The prior scheduled run never fired; release its wait slot.
		s.done.Done()
	}
	s.done.Add(1)
	s.timer = time.AfterFunc(s.ventana, func() {
		defer s.done.Done()
		s.ejecutar(snap)
	})
}

func (s *Sincronizador) ejecutar(snap solicitud) {
	// No active line: the preview is {0,0,0} without contacting the
	// authority.
	if !snap.activa {
		s.aceptar(s.siguienteSeq(), money.Totales{
			MontoNeto:  decimal.Zero,
			MontoIVA:   decimal.Zero,
			MontoTotal: decimal.Zero,
		})
		return
	}

	miSeq := s.siguienteSeq()
	resp, err := s.auth.Preview(context.Background(), snap.req)
	if err != nil {
		// Degrade silently to the local engine — the user always sees a
		// number; only the log records the failure.
		log.Warn().Err(err).Msg("preview: autoridad no disponible, usando cálculo local")
		s.aceptar(miSeq, money.TotalesDocumento(snap.subtotales, snap.tasa))
		return
	}
	s.aceptar(miSeq, money.Totales{
		MontoNeto:  resp.MontoNeto,
		MontoIVA:   resp.MontoIVA,
		MontoTotal: resp.MontoTotal,
	})
}

// siguienteSeq tags a request at initiation time. Last-write-wins is decided
// on this number, not on response arrival order.
func (s *Sincronizador) siguienteSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// aceptar publishes totals unless a newer request was issued meanwhile.
func (s *Sincronizador) aceptar(seq uint64, t money.Totales) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		log.Debug().Uint64("seq", seq).Msg("preview: respuesta obsoleta descartada")
		return
	}
	s.ultimos = t
	cb := s.onTotales
	s.mu.Unlock()
	cb(t)
}

// Ultimos returns the last accepted totals.
func (s *Sincronizador) Ultimos() money.Totales {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ultimos
}

// Detener cancels any pending timer and waits for an in-flight execution to
// finish. The session owns exactly one Sincronizador; call this on teardown.
func (s *Sincronizador) Detener() {
	s.mu.Lock()
	if s.timer != nil && s.timer.Stop() {
		s.done.Done()
	}
	s.mu.Unlock()
	s.done.Wait()
}
