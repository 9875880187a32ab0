package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/profile"
)

// Invoices default to 21% VAT and a due date 30 calendar days after issue.
var defaultTaxRate = decimal.NewFromInt(21)

const defaultDueDays = 30

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Invoice, error)

	BeginCreate(ctx context.Context) (CreateTx, error)
}

// CreateTx covers every write invoice creation performs: the counter
// increment, the down payment consumption and the invoice append commit
// or roll back together.
type CreateTx interface {
	NextCounter() (int64, error)
	EmitterProfile() (*profile.Profile, error)
	AvailableDownPayment(clientID string) (*downpayment.DownPayment, error)
	ConsumeDownPayment(id, invoiceID string) error
	AppendInvoice(inv *Invoice) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type LineParams struct {
	Concept   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

type CreateParams struct {
	ClientID  string
	Lines     []LineParams
	TaxRate   *decimal.Decimal
	IssueDate *time.Time
	DueDate   *time.Time
}

// Create validates the lines, computes the totals, applies at most one
// outstanding down payment of the client and persists the assembled
// invoice. All writes happen in a single storage transaction.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if len(params.Lines) == 0 {
		return nil, ErrNoLines
	}

	taxRate := defaultTaxRate
	if params.TaxRate != nil {
		taxRate = *params.TaxRate
	}

	issueDate := time.Now().UTC()
	if params.IssueDate != nil {
		issueDate = *params.IssueDate
	}

	dueDate := issueDate.AddDate(0, 0, defaultDueDays)
	if params.DueDate != nil {
		dueDate = *params.DueDate
	}

	id := "inv_" + uuid.NewString()

	// Line totals and the taxable base keep full precision; only the
	// invoice-level totals are rounded to cents.
	base := decimal.Zero
	lines := make([]Line, len(params.Lines))

	for i, lp := range params.Lines {
		total := lp.Quantity.Mul(lp.UnitPrice)
		base = base.Add(total)
		lines[i] = Line{
			ID:        fmt.Sprintf("line_%s_%d", id, i),
			InvoiceID: id,
			Concept:   lp.Concept,
			Quantity:  lp.Quantity,
			UnitPrice: lp.UnitPrice,
			Total:     total,
		}
	}

	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	total := base.Mul(one.Add(taxRate.Div(hundred))).Round(2)

	tx, err := s.repo.BeginCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin invoice creation: %w", err)
	}
	defer tx.Rollback()

	counter, err := tx.NextCounter()
	if err != nil {
		return nil, fmt.Errorf("advancing invoice counter: %w", err)
	}

	emitter, err := tx.EmitterProfile()
	if err != nil {
		return nil, fmt.Errorf("reading emitter profile: %w", err)
	}

	format := DefaultNumberFormat
	if emitter != nil && emitter.InvoiceFormat != "" {
		format = emitter.InvoiceFormat
	}

	inv := &Invoice{
		ID:          id,
		Number:      FormatNumber(format, issueDate, counter),
		ClientID:    params.ClientID,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		TaxableBase: base,
		TaxRate:     taxRate,
		Total:       total,
		Status:      StatusIssued,
		Lines:       lines,
		Emitter:     emitter,
		TotalDue:    total,
	}

	// First unconsumed advance of this client, in storage order.
	dp, err := tx.AvailableDownPayment(params.ClientID)
	if err != nil {
		return nil, fmt.Errorf("finding down payment: %w", err)
	}

	if dp != nil {
		applied := dp.Amount
		inv.DownPaymentApplied = &applied
		inv.TotalDue = total.Sub(applied).Round(2)

		if err := tx.ConsumeDownPayment(dp.ID, id); err != nil {
			return nil, fmt.Errorf("consuming down payment: %w", err)
		}
	}

	if err := tx.AppendInvoice(inv); err != nil {
		return nil, fmt.Errorf("appending invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice creation: %w", err)
	}

	return inv, nil
}

// UpdateStatus overwrites the status of an invoice. Any status may be
// assigned; there is no transition guard. Returns ErrNotFound when the id
// is unknown, leaving the collection untouched.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Invoice, error) {
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) List(ctx context.Context) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// Latest returns the invoice with the most recent issue date. Invoices
// sharing that date tie-break by storage order, first one wins. Returns
// ErrNotFound when no invoices exist.
func (s *Service) Latest(ctx context.Context) (*Invoice, error) {
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	var latest *Invoice
	for _, inv := range invoices {
		if latest == nil || inv.IssueDate.After(latest.IssueDate) {
			latest = inv
		}
	}

	if latest == nil {
		return nil, ErrNotFound
	}

	return latest, nil
}

// ByNumber finds the invoice with the exact human-facing number.
func (s *Service) ByNumber(ctx context.Context, number string) (*Invoice, error) {
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		if inv.Number == number {
			return inv, nil
		}
	}

	return nil, ErrNotFound
}
