package invoice_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	downPaymentStore "github.com/DxMxTx/autonomia/internal/downpayment/store"
	"github.com/DxMxTx/autonomia/internal/invoice"
	invoiceStore "github.com/DxMxTx/autonomia/internal/invoice/store"
	"github.com/DxMxTx/autonomia/internal/profile"
	profileStore "github.com/DxMxTx/autonomia/internal/profile/store"
)

type fixture struct {
	invoices *invoice.Service
	ledger   *downpayment.Service
	profile  *profile.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return fixture{
		invoices: invoice.NewService(invoiceStore.New(db)),
		ledger:   downpayment.NewService(downPaymentStore.New(db)),
		profile:  profile.NewService(profileStore.New(db)),
	}
}

func line(concept string, qty, price int64) invoice.LineParams {
	return invoice.LineParams{
		Concept:   concept,
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(price),
	}
}

func TestService_Create_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := time.Now().UTC()

	inv, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID: "cli_1",
		Lines:    []invoice.LineParams{line("Diseño web", 1, 500)},
	})
	require.NoError(t, err)

	assert.Equal(t, "cli_1", inv.ClientID)
	assert.Equal(t, invoice.StatusIssued, inv.Status)
	assert.Equal(t, "500.00", inv.TaxableBase.StringFixed(2))
	assert.Equal(t, "21", inv.TaxRate.String())
	assert.Equal(t, "605.00", inv.Total.StringFixed(2))
	assert.Equal(t, "605.00", inv.TotalDue.StringFixed(2))
	assert.Nil(t, inv.DownPaymentApplied)
	assert.Nil(t, inv.Emitter)

	assert.False(t, inv.IssueDate.Before(before))
	assert.Equal(t, inv.IssueDate.AddDate(0, 0, 30), inv.DueDate)

	require.Len(t, inv.Lines, 1)
	assert.Equal(t, inv.ID, inv.Lines[0].InvoiceID)
	assert.Equal(t, "500", inv.Lines[0].Total.String())

	wantNumber := invoice.FormatNumber(invoice.DefaultNumberFormat, inv.IssueDate, 1)
	assert.Equal(t, wantNumber, inv.Number)
}

func TestService_Create_MultipleLines(t *testing.T) {
	f := newFixture(t)

	rate := decimal.NewFromInt(10)
	inv, err := f.invoices.Create(context.Background(), invoice.CreateParams{
		ClientID: "cli_1",
		TaxRate:  &rate,
		Lines: []invoice.LineParams{
			line("Consultoría", 3, 100),
			{Concept: "Soporte", Quantity: decimal.NewFromFloat(1.5), UnitPrice: decimal.NewFromInt(80)},
		},
	})
	require.NoError(t, err)

	// 300 + 120 = 420 base, 10% tax.
	assert.Equal(t, "420.00", inv.TaxableBase.StringFixed(2))
	assert.Equal(t, "462.00", inv.Total.StringFixed(2))
}

func TestService_Create_NoLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.invoices.Create(ctx, invoice.CreateParams{ClientID: "cli_1"})
	require.ErrorIs(t, err, invoice.ErrNoLines)

	// Nothing may have been written, including the counter: the next
	// invoice still gets the first sequence value.
	invoices, err := f.invoices.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	inv, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID: "cli_1",
		Lines:    []invoice.LineParams{line("Diseño", 1, 100)},
	})
	require.NoError(t, err)
	assert.Contains(t, inv.Number, "0001")
}

func TestService_Create_AppliesDownPaymentOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Add(ctx, "cli_1", decimal.NewFromInt(100), "anticipo proyecto")
	require.NoError(t, err)
	_, err = f.ledger.Add(ctx, "cli_2", decimal.NewFromInt(50), "otro cliente")
	require.NoError(t, err)

	first, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID: "cli_1",
		Lines:    []invoice.LineParams{line("Diseño web", 1, 500)},
	})
	require.NoError(t, err)

	require.NotNil(t, first.DownPaymentApplied)
	assert.Equal(t, "100.00", first.DownPaymentApplied.StringFixed(2))
	assert.Equal(t, "605.00", first.Total.StringFixed(2))
	assert.Equal(t, "505.00", first.TotalDue.StringFixed(2))

	// The advance is consumed exactly once: the second invoice for the
	// same client gets nothing.
	second, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID: "cli_1",
		Lines:    []invoice.LineParams{line("Mantenimiento", 1, 200)},
	})
	require.NoError(t, err)
	assert.Nil(t, second.DownPaymentApplied)
	assert.Equal(t, second.Total.StringFixed(2), second.TotalDue.StringFixed(2))

	payments, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	require.NotNil(t, payments[0].AppliedInvoiceID)
	assert.Equal(t, first.ID, *payments[0].AppliedInvoiceID)
	assert.Nil(t, payments[1].AppliedInvoiceID)
}

func TestService_Create_FirstAvailableByStorageOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, err := f.ledger.Add(ctx, "cli_1", decimal.NewFromInt(30), "primero")
	require.NoError(t, err)
	_, err = f.ledger.Add(ctx, "cli_1", decimal.NewFromInt(200), "segundo, mayor")
	require.NoError(t, err)

	inv, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID: "cli_1",
		Lines:    []invoice.LineParams{line("Diseño", 1, 100)},
	})
	require.NoError(t, err)

	// First found in storage order wins, not the largest.
	require.NotNil(t, inv.DownPaymentApplied)
	assert.Equal(t, "30.00", inv.DownPaymentApplied.StringFixed(2))

	payments, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, payments[0].AppliedInvoiceID)
	assert.Equal(t, older.ID, payments[0].ID)
}

func TestService_Create_EmitterSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profile.Save(ctx, &profile.Profile{
		Name:          "Ana García",
		TaxID:         "12345678Z",
		InvoiceFormat: "{YYYY}/{YY}-{COUNTER}",
	}))

	issue := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID:  "cli_1",
		IssueDate: &issue,
		Lines:     []invoice.LineParams{line("Diseño", 1, 100)},
	})
	require.NoError(t, err)

	assert.Equal(t, "2024/24-0001", inv.Number)
	require.NotNil(t, inv.Emitter)
	assert.Equal(t, "Ana García", inv.Emitter.Name)

	// Editing the profile later must not rewrite history.
	require.NoError(t, f.profile.Save(ctx, &profile.Profile{Name: "Ana García Renombrada"}))

	stored, err := f.invoices.ByNumber(ctx, "2024/24-0001")
	require.NoError(t, err)
	require.NotNil(t, stored.Emitter)
	assert.Equal(t, "Ana García", stored.Emitter.Name)
}

func TestService_Create_StrictlyIncreasingNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []string{"F-2024-0001", "F-2024-0002", "F-2024-0003"}

	for _, number := range want {
		inv, err := f.invoices.Create(ctx, invoice.CreateParams{
			ClientID:  "cli_1",
			IssueDate: &issue,
			Lines:     []invoice.LineParams{line("Diseño", 1, 100)},
		})
		require.NoError(t, err)
		assert.Equal(t, number, inv.Number)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID: "cli_1",
		Lines:    []invoice.LineParams{line("Diseño", 1, 100)},
	})
	require.NoError(t, err)

	updated, err := f.invoices.UpdateStatus(ctx, inv.ID, invoice.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, updated.Status)

	invoices, err := f.invoices.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoice.StatusPaid, invoices[0].Status)

	// Any transition is allowed, including back to issued.
	_, err = f.invoices.UpdateStatus(ctx, inv.ID, invoice.StatusIssued)
	require.NoError(t, err)
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID: "cli_1",
		Lines:    []invoice.LineParams{line("Diseño", 1, 100)},
	})
	require.NoError(t, err)

	before, err := f.invoices.List(ctx)
	require.NoError(t, err)

	updated, err := f.invoices.UpdateStatus(ctx, "inv_desconocida", invoice.StatusPaid)
	require.ErrorIs(t, err, invoice.ErrNotFound)
	assert.Nil(t, updated)

	after, err := f.invoices.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_Latest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.invoices.Latest(ctx)
	require.ErrorIs(t, err, invoice.ErrNotFound)

	dates := []time.Time{
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	var numbers []string
	for _, d := range dates {
		issue := d
		inv, err := f.invoices.Create(ctx, invoice.CreateParams{
			ClientID:  "cli_1",
			IssueDate: &issue,
			Lines:     []invoice.LineParams{line("Diseño", 1, 100)},
		})
		require.NoError(t, err)
		numbers = append(numbers, inv.Number)
	}

	latest, err := f.invoices.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbers[1], latest.Number)

	// A tie on the issue date resolves to the first stored invoice.
	issue := dates[1]
	_, err = f.invoices.Create(ctx, invoice.CreateParams{
		ClientID:  "cli_1",
		IssueDate: &issue,
		Lines:     []invoice.LineParams{line("Diseño", 1, 100)},
	})
	require.NoError(t, err)

	latest, err = f.invoices.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbers[1], latest.Number)
}

func TestService_ByNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inv, err := f.invoices.Create(ctx, invoice.CreateParams{
		ClientID:  "cli_1",
		IssueDate: &issue,
		Lines:     []invoice.LineParams{line("Diseño", 1, 100)},
	})
	require.NoError(t, err)

	found, err := f.invoices.ByNumber(ctx, inv.Number)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, found.ID)

	_, err = f.invoices.ByNumber(ctx, "F-1999-0001")
	require.ErrorIs(t, err, invoice.ErrNotFound)
}
