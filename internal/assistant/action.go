package assistant

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DxMxTx/autonomia/internal/invoice"
)

// ActionType enumerates the structured intents the interpreter may emit.
type ActionType string

const (
	ActionCreateClient        ActionType = "CREATE_CLIENT"
	ActionCreateInvoice       ActionType = "CREATE_INVOICE"
	ActionCreateDownPayment   ActionType = "CREATE_DOWN_PAYMENT"
	ActionCreateAgendaEvent   ActionType = "CREATE_AGENDA_EVENT"
	ActionUpdateInvoiceStatus ActionType = "UPDATE_INVOICE_STATUS"
	ActionReadInvoice         ActionType = "READ_INVOICE"
)

// Action is a closed sum over the enumerated action kinds. Payloads are
// decoded into their typed form at the trust boundary; nothing downstream
// touches raw interpreter output.
type Action interface {
	Type() ActionType
}

type CreateClientAction struct {
	Name    string
	TaxID   string
	Address *string
	Email   *string
	Phone   *string
}

func (CreateClientAction) Type() ActionType { return ActionCreateClient }

type InvoiceLine struct {
	Concept   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

type CreateInvoiceAction struct {
	ClientID  string
	Lines     []InvoiceLine
	TaxRate   *decimal.Decimal
	IssueDate *time.Time
	DueDate   *time.Time
}

func (CreateInvoiceAction) Type() ActionType { return ActionCreateInvoice }

type CreateDownPaymentAction struct {
	ClientID    string
	Amount      decimal.Decimal
	Description string
}

func (CreateDownPaymentAction) Type() ActionType { return ActionCreateDownPayment }

type CreateAgendaEventAction struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	ClientID    *string
}

func (CreateAgendaEventAction) Type() ActionType { return ActionCreateAgendaEvent }

type UpdateInvoiceStatusAction struct {
	InvoiceID string
	Status    invoice.Status
}

func (UpdateInvoiceStatusAction) Type() ActionType { return ActionUpdateInvoiceStatus }

// ReadInvoiceAction is the only pure query: lookup is either "latest" or
// "by_number" with the exact invoice number.
type ReadInvoiceAction struct {
	Lookup string
	Number string
}

func (ReadInvoiceAction) Type() ActionType { return ActionReadInvoice }

const (
	LookupLatest   = "latest"
	LookupByNumber = "by_number"
)
