package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/agenda"
	"github.com/DxMxTx/autonomia/internal/client"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/invoice"
	"github.com/DxMxTx/autonomia/internal/logger"
)

// Outcome reports what a dispatched action did. DataChanged tells the
// caller to refresh its snapshot; Invoice and Event carry records worth
// showing to the user.
type Outcome struct {
	DataChanged bool
	Invoice     *invoice.Invoice
	Event       *agenda.Event
}

// Dispatcher maps typed actions onto the domain services.
type Dispatcher struct {
	clients  *client.Service
	invoices *invoice.Service
	ledger   *downpayment.Service
	agenda   *agenda.Service
	log      zerolog.Logger
}

func NewDispatcher(
	clients *client.Service,
	invoices *invoice.Service,
	ledger *downpayment.Service,
	agendaSvc *agenda.Service,
) *Dispatcher {
	return &Dispatcher{
		clients:  clients,
		invoices: invoices,
		ledger:   ledger,
		agenda:   agendaSvc,
		log:      logger.WithComponent("dispatcher"),
	}
}

// Dispatch executes a single action. Read lookups that find nothing
// return an empty outcome, not an error; a missing invoice on a status
// update behaves the same way.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action) (*Outcome, error) {
	d.log.Debug().Str("action", string(action.Type())).Msg("dispatching action")

	switch a := action.(type) {
	case CreateClientAction:
		_, err := d.clients.Create(ctx, client.CreateParams{
			Name:    a.Name,
			TaxID:   a.TaxID,
			Address: a.Address,
			Email:   a.Email,
			Phone:   a.Phone,
		})
		if err != nil {
			return nil, err
		}

		return &Outcome{DataChanged: true}, nil

	case CreateInvoiceAction:
		lines := make([]invoice.LineParams, len(a.Lines))
		for i, l := range a.Lines {
			lines[i] = invoice.LineParams{Concept: l.Concept, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
		}

		inv, err := d.invoices.Create(ctx, invoice.CreateParams{
			ClientID:  a.ClientID,
			Lines:     lines,
			TaxRate:   a.TaxRate,
			IssueDate: a.IssueDate,
			DueDate:   a.DueDate,
		})
		if err != nil {
			return nil, err
		}

		return &Outcome{DataChanged: true, Invoice: inv}, nil

	case CreateDownPaymentAction:
		if _, err := d.ledger.Add(ctx, a.ClientID, a.Amount, a.Description); err != nil {
			return nil, err
		}

		return &Outcome{DataChanged: true}, nil

	case CreateAgendaEventAction:
		event, err := d.agenda.Create(ctx, agenda.CreateParams{
			Title:       a.Title,
			Description: a.Description,
			Start:       a.Start,
			End:         a.End,
			ClientID:    a.ClientID,
		})
		if err != nil {
			return nil, err
		}

		return &Outcome{DataChanged: true, Event: event}, nil

	case UpdateInvoiceStatusAction:
		_, err := d.invoices.UpdateStatus(ctx, a.InvoiceID, a.Status)
		if errors.Is(err, invoice.ErrNotFound) {
			d.log.Warn().Str("invoice_id", a.InvoiceID).Msg("status update for unknown invoice")
			return &Outcome{}, nil
		}
		if err != nil {
			return nil, err
		}

		return &Outcome{DataChanged: true}, nil

	case ReadInvoiceAction:
		return d.readInvoice(ctx, a)

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func (d *Dispatcher) readInvoice(ctx context.Context, a ReadInvoiceAction) (*Outcome, error) {
	var (
		inv *invoice.Invoice
		err error
	)

	if a.Lookup == LookupLatest {
		inv, err = d.invoices.Latest(ctx)
	} else {
		inv, err = d.invoices.ByNumber(ctx, a.Number)
	}

	if errors.Is(err, invoice.ErrNotFound) {
		return &Outcome{}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Outcome{Invoice: inv}, nil
}
