package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DxMxTx/autonomia/internal/invoice"
)

var (
	// ErrUnknownAction is returned for action types outside the closed set.
	ErrUnknownAction = errors.New("unknown action type")

	// ErrInvalidPayload is wrapped around every payload decode failure.
	ErrInvalidPayload = errors.New("invalid action payload")
)

// DecodeAction turns the interpreter's loosely typed (type, payload) pair
// into a typed Action. The interpreter output is a trust boundary:
// anything that does not decode cleanly is rejected here, before any
// store operation runs.
func DecodeAction(actionType string, payload json.RawMessage) (Action, error) {
	switch ActionType(actionType) {
	case ActionCreateClient:
		return decodeCreateClient(payload)
	case ActionCreateInvoice:
		return decodeCreateInvoice(payload)
	case ActionCreateDownPayment:
		return decodeCreateDownPayment(payload)
	case ActionCreateAgendaEvent:
		return decodeCreateAgendaEvent(payload)
	case ActionUpdateInvoiceStatus:
		return decodeUpdateInvoiceStatus(payload)
	case ActionReadInvoice:
		return decodeReadInvoice(payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, actionType)
	}
}

func decodeCreateClient(payload json.RawMessage) (Action, error) {
	var wire struct {
		Name    string  `json:"nombre_fiscal"`
		TaxID   string  `json:"cif_nif"`
		Address *string `json:"direccion"`
		Email   *string `json:"email"`
		Phone   *string `json:"telefono"`
	}

	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, invalidPayload(ActionCreateClient, err)
	}

	if strings.TrimSpace(wire.Name) == "" {
		return nil, invalidPayload(ActionCreateClient, errors.New("missing nombre_fiscal"))
	}

	return CreateClientAction{
		Name:    wire.Name,
		TaxID:   wire.TaxID,
		Address: wire.Address,
		Email:   wire.Email,
		Phone:   wire.Phone,
	}, nil
}

func decodeCreateInvoice(payload json.RawMessage) (Action, error) {
	var wire struct {
		ClientID  string          `json:"cliente_id"`
		TaxRate   json.RawMessage `json:"tipo_iva"`
		IssueDate string          `json:"fecha_emision"`
		DueDate   string          `json:"fecha_vencimiento"`
		Lines     []struct {
			Concept   string          `json:"concepto"`
			Quantity  decimal.Decimal `json:"cantidad"`
			UnitPrice decimal.Decimal `json:"precio_unitario"`
		} `json:"lineas"`
	}

	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, invalidPayload(ActionCreateInvoice, err)
	}

	if strings.TrimSpace(wire.ClientID) == "" {
		return nil, invalidPayload(ActionCreateInvoice, errors.New("missing cliente_id"))
	}

	lines := make([]InvoiceLine, len(wire.Lines))
	for i, l := range wire.Lines {
		lines[i] = InvoiceLine{Concept: l.Concept, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	return CreateInvoiceAction{
		ClientID:  wire.ClientID,
		Lines:     lines,
		TaxRate:   parseRate(wire.TaxRate),
		IssueDate: parseDate(wire.IssueDate),
		DueDate:   parseDate(wire.DueDate),
	}, nil
}

func decodeCreateDownPayment(payload json.RawMessage) (Action, error) {
	var wire struct {
		ClientID    string          `json:"cliente_id"`
		Amount      decimal.Decimal `json:"monto"`
		Description string          `json:"descripcion"`
	}

	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, invalidPayload(ActionCreateDownPayment, err)
	}

	if strings.TrimSpace(wire.ClientID) == "" {
		return nil, invalidPayload(ActionCreateDownPayment, errors.New("missing cliente_id"))
	}

	return CreateDownPaymentAction{
		ClientID:    wire.ClientID,
		Amount:      wire.Amount,
		Description: wire.Description,
	}, nil
}

func decodeCreateAgendaEvent(payload json.RawMessage) (Action, error) {
	var wire struct {
		Title       string  `json:"titulo"`
		Description string  `json:"descripcion"`
		Start       string  `json:"fecha_inicio"`
		End         string  `json:"fecha_fin"`
		ClientID    *string `json:"cliente_id"`
	}

	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, invalidPayload(ActionCreateAgendaEvent, err)
	}

	start := parseDate(wire.Start)
	if start == nil {
		return nil, invalidPayload(ActionCreateAgendaEvent, fmt.Errorf("unparseable fecha_inicio %q", wire.Start))
	}

	end := parseDate(wire.End)
	if end == nil {
		end = start
	}

	return CreateAgendaEventAction{
		Title:       wire.Title,
		Description: wire.Description,
		Start:       *start,
		End:         *end,
		ClientID:    wire.ClientID,
	}, nil
}

func decodeUpdateInvoiceStatus(payload json.RawMessage) (Action, error) {
	var wire struct {
		InvoiceID string `json:"invoiceId"`
		Status    string `json:"status"`
	}

	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, invalidPayload(ActionUpdateInvoiceStatus, err)
	}

	if wire.InvoiceID == "" || wire.Status == "" {
		return nil, invalidPayload(ActionUpdateInvoiceStatus, errors.New("missing invoiceId or status"))
	}

	return UpdateInvoiceStatusAction{
		InvoiceID: wire.InvoiceID,
		Status:    invoice.Status(wire.Status),
	}, nil
}

func decodeReadInvoice(payload json.RawMessage) (Action, error) {
	var wire struct {
		Lookup string `json:"lookup"`
		Number string `json:"numero_factura"`
	}

	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, invalidPayload(ActionReadInvoice, err)
	}

	if wire.Lookup != LookupLatest && wire.Number == "" {
		return nil, invalidPayload(ActionReadInvoice, errors.New("missing lookup or numero_factura"))
	}

	lookup := wire.Lookup
	if lookup == "" {
		lookup = LookupByNumber
	}

	return ReadInvoiceAction{Lookup: lookup, Number: wire.Number}, nil
}

func invalidPayload(t ActionType, err error) error {
	return fmt.Errorf("%w for %s: %v", ErrInvalidPayload, t, err)
}

// parseRate reads a tax rate that may arrive as a number, a numeric
// string, or garbage. Anything non-numeric means "use the default".
func parseRate(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 {
		return nil
	}

	var rate decimal.Decimal
	if err := json.Unmarshal(raw, &rate); err != nil {
		return nil
	}

	return &rate
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate accepts the date shapes the interpreter produces. Unparseable
// values yield nil so the caller can fall back to its default.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}

	return nil
}
