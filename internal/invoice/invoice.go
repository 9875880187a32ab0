package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DxMxTx/autonomia/internal/profile"
)

// Status represents the lifecycle state of an invoice. Transitions are
// intentionally unguarded: any status may be assigned at any time so the
// user can correct mistakes.
type Status string

const (
	StatusIssued  Status = "emitida"
	StatusPaid    Status = "pagada"
	StatusOverdue Status = "vencida"
)

// Line is a single billed concept. Lines belong to exactly one invoice.
type Line struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"factura_id"`
	Concept   string          `json:"concepto"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Total     decimal.Decimal `json:"total_linea"`
}

// Invoice is immutable after creation except for Status. Emitter is a
// frozen copy of the profile at creation time so historical invoices stay
// correct when the profile is later edited.
type Invoice struct {
	ID                 string           `json:"id"`
	Number             string           `json:"numero_factura"`
	ClientID           string           `json:"cliente_id"`
	IssueDate          time.Time        `json:"fecha_emision"`
	DueDate            time.Time        `json:"fecha_vencimiento"`
	TaxableBase        decimal.Decimal  `json:"base_imponible"`
	TaxRate            decimal.Decimal  `json:"tipo_iva"`
	Total              decimal.Decimal  `json:"total_factura"`
	Status             Status           `json:"estado"`
	Lines              []Line           `json:"lineas"`
	Emitter            *profile.Profile `json:"emitterData"`
	DownPaymentApplied *decimal.Decimal `json:"down_payment_applied"`
	TotalDue           decimal.Decimal  `json:"total_a_pagar"`
}
