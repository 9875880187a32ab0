package downpayment

import (
	"time"

	"github.com/shopspring/decimal"
)

// DownPayment is an advance a client paid before being invoiced. Once
// applied to an invoice the back-reference is never cleared, so an advance
// can be consumed at most once.
type DownPayment struct {
	ID               string          `json:"id"`
	ClientID         string          `json:"cliente_id"`
	Amount           decimal.Decimal `json:"monto"`
	Date             time.Time       `json:"fecha"`
	Description      string          `json:"descripcion"`
	AppliedInvoiceID *string         `json:"factura_id_aplicada"`
}

// Available reports whether the advance has not been applied to an invoice yet.
func (d *DownPayment) Available() bool {
	return d.AppliedInvoiceID == nil
}
