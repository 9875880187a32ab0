package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/agenda"
	"github.com/DxMxTx/autonomia/internal/client"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/invoice"
	"github.com/DxMxTx/autonomia/internal/logger"
	"github.com/DxMxTx/autonomia/internal/profile"
)

// ErrBusy rejects a submission while a previous one is still in flight.
// There is exactly one logical writer, so requests are never queued.
var ErrBusy = errors.New("a request is already being processed")

// Greeting is the assistant's canned opening message.
const Greeting = `¡Hola! Soy tu asistente de gestión para autónomos. Puedes pedirme que gestione tus clientes, facturas y agenda.

Por ejemplo, puedes probar con:
- "Añade un nuevo cliente: ACME Corp, CIF A12345678"
- "Crea una factura para ACME Corp de 500€ por 'Diseño web'"
- "Muéstrame las facturas pendientes"
- "Agenda una reunión con ACME Corp para mañana a las 10am"

¿En qué te puedo ayudar hoy?`

const interpreterErrorReply = "Lo siento, ha ocurrido un error al comunicarme con la IA. Inténtalo de nuevo."

// historyWindow is how many recent chat turns the interpreter sees.
const historyWindow = 5

// ChatResult is what the conversation surface renders after a submission.
type ChatResult struct {
	Reply       string
	DataChanged bool
	Invoice     *invoice.Invoice
	Event       *agenda.Event
}

// Service orchestrates one chat turn: snapshot, interpret, dispatch.
// Errors from the interpreter or a mutating action never propagate; they
// become plain-language diagnostics in the reply.
type Service struct {
	interpreter Interpreter
	dispatcher  *Dispatcher

	clients  *client.Service
	invoices *invoice.Service
	events   *agenda.Service
	ledger   *downpayment.Service
	profile  *profile.Service

	busy atomic.Bool
	log  zerolog.Logger
}

func NewService(
	interpreter Interpreter,
	dispatcher *Dispatcher,
	clients *client.Service,
	invoices *invoice.Service,
	events *agenda.Service,
	ledger *downpayment.Service,
	profileSvc *profile.Service,
) *Service {
	return &Service{
		interpreter: interpreter,
		dispatcher:  dispatcher,
		clients:     clients,
		invoices:    invoices,
		events:      events,
		ledger:      ledger,
		profile:     profileSvc,
		log:         logger.WithComponent("assistant"),
	}
}

// Handle runs one user submission. Only one submission may be in flight
// at a time; concurrent calls get ErrBusy.
func (s *Service) Handle(ctx context.Context, history []Message) (*ChatResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	snap := s.snapshot(ctx)

	res, err := s.interpreter.Interpret(ctx, history, snap)
	if err != nil {
		s.log.Error().Err(err).Msg("interpreter call failed")
		return &ChatResult{Reply: interpreterErrorReply}, nil
	}

	result := &ChatResult{Reply: res.Reply}

	if res.Action == nil {
		return result, nil
	}

	outcome, err := s.dispatcher.Dispatch(ctx, res.Action)
	if err != nil {
		s.log.Error().Err(err).Str("action", string(res.Action.Type())).Msg("action failed")
		result.Reply = fmt.Sprintf("Hubo un error al ejecutar la acción: %v", err)
		return result, nil
	}

	result.DataChanged = outcome.DataChanged
	result.Invoice = outcome.Invoice
	result.Event = outcome.Event

	return result, nil
}

// snapshot gathers the read-only context for the interpreter. Reads fail
// soft: a collection that cannot be read is presented as empty.
func (s *Service) snapshot(ctx context.Context) Snapshot {
	var snap Snapshot

	var err error
	if snap.Clients, err = s.clients.List(ctx); err != nil {
		s.log.Warn().Err(err).Msg("snapshot: listing clients")
	}
	if snap.Invoices, err = s.invoices.List(ctx); err != nil {
		s.log.Warn().Err(err).Msg("snapshot: listing invoices")
	}
	if snap.Events, err = s.events.List(ctx); err != nil {
		s.log.Warn().Err(err).Msg("snapshot: listing agenda events")
	}
	if snap.DownPayments, err = s.ledger.List(ctx); err != nil {
		s.log.Warn().Err(err).Msg("snapshot: listing down payments")
	}
	if snap.Profile, err = s.profile.Get(ctx); err != nil {
		s.log.Warn().Err(err).Msg("snapshot: reading profile")
	}

	return snap
}
