package assistant

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/DxMxTx/autonomia/internal/agenda"
	agendaStore "github.com/DxMxTx/autonomia/internal/agenda/store"
	"github.com/DxMxTx/autonomia/internal/client"
	clientStore "github.com/DxMxTx/autonomia/internal/client/store"
	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	downPaymentStore "github.com/DxMxTx/autonomia/internal/downpayment/store"
	"github.com/DxMxTx/autonomia/internal/invoice"
	invoiceStore "github.com/DxMxTx/autonomia/internal/invoice/store"
	"github.com/DxMxTx/autonomia/internal/profile"
	profileStore "github.com/DxMxTx/autonomia/internal/profile/store"
)

type serviceFixture struct {
	svc         *Service
	interpreter *MockInterpreter

	clients  *client.Service
	invoices *invoice.Service
	events   *agenda.Service
	ledger   *downpayment.Service
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clients := client.NewService(clientStore.New(db))
	invoices := invoice.NewService(invoiceStore.New(db))
	events := agenda.NewService(agendaStore.New(db))
	ledger := downpayment.NewService(downPaymentStore.New(db))
	profileSvc := profile.NewService(profileStore.New(db))

	dispatcher := NewDispatcher(clients, invoices, ledger, events)
	interpreter := NewMockInterpreter(gomock.NewController(t))

	return serviceFixture{
		svc:         NewService(interpreter, dispatcher, clients, invoices, events, ledger, profileSvc),
		interpreter: interpreter,
		clients:     clients,
		invoices:    invoices,
		events:      events,
		ledger:      ledger,
	}
}

func userSays(text string) []Message {
	return []Message{{Sender: SenderUser, Text: text}}
}

func TestService_Handle_ReplyOnly(t *testing.T) {
	f := newServiceFixture(t)

	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&Result{Reply: "Claro, dime qué necesitas."}, nil)

	res, err := f.svc.Handle(context.Background(), userSays("hola"))
	require.NoError(t, err)
	assert.Equal(t, "Claro, dime qué necesitas.", res.Reply)
	assert.False(t, res.DataChanged)
	assert.Nil(t, res.Invoice)
	assert.Nil(t, res.Event)
}

func TestService_Handle_InterpreterFailure(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)

	res, err := f.svc.Handle(ctx, userSays("crea un cliente"))
	require.NoError(t, err)
	assert.Equal(t, "Lo siento, ha ocurrido un error al comunicarme con la IA. Inténtalo de nuevo.", res.Reply)
	assert.False(t, res.DataChanged)

	clients, err := f.clients.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestService_Handle_CreateClientAction(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&Result{
			Reply:  "He creado el cliente ACME Corp.",
			Action: CreateClientAction{Name: "ACME Corp", TaxID: "A12345678"},
		}, nil)

	res, err := f.svc.Handle(ctx, userSays("añade el cliente ACME Corp"))
	require.NoError(t, err)
	assert.True(t, res.DataChanged)
	assert.Equal(t, "He creado el cliente ACME Corp.", res.Reply)

	clients, err := f.clients.List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "ACME Corp", clients[0].Name)
}

func TestService_Handle_CreateInvoiceAction(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	c, err := f.clients.Create(ctx, client.CreateParams{Name: "ACME Corp"})
	require.NoError(t, err)

	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&Result{
			Reply: "Factura creada.",
			Action: CreateInvoiceAction{
				ClientID: c.ID,
				Lines: []InvoiceLine{{
					Concept:   "Diseño web",
					Quantity:  decimal.NewFromInt(1),
					UnitPrice: decimal.NewFromInt(500),
				}},
			},
		}, nil)

	res, err := f.svc.Handle(ctx, userSays("factura 500€ a ACME"))
	require.NoError(t, err)
	assert.True(t, res.DataChanged)
	require.NotNil(t, res.Invoice)
	assert.Contains(t, res.Invoice.Number, "0001")
	assert.Equal(t, "605.00", res.Invoice.Total.StringFixed(2))
}

func TestService_Handle_DispatchFailure(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// An invoice without lines is rejected by the domain service.
	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&Result{
			Reply:  "Factura creada.",
			Action: CreateInvoiceAction{ClientID: "cli_1"},
		}, nil)

	res, err := f.svc.Handle(ctx, userSays("crea una factura vacía"))
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Hubo un error al ejecutar la acción:")
	assert.False(t, res.DataChanged)

	invoices, err := f.invoices.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestService_Handle_ReadInvoice_NoneExists(t *testing.T) {
	f := newServiceFixture(t)

	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&Result{
			Reply:  "No encuentro ninguna factura.",
			Action: ReadInvoiceAction{Lookup: LookupLatest},
		}, nil)

	res, err := f.svc.Handle(context.Background(), userSays("muéstrame la última factura"))
	require.NoError(t, err)
	assert.False(t, res.DataChanged)
	assert.Nil(t, res.Invoice)
	assert.Equal(t, "No encuentro ninguna factura.", res.Reply)
}

func TestService_Handle_TrimsHistory(t *testing.T) {
	f := newServiceFixture(t)

	history := []Message{
		{Sender: SenderUser, Text: "uno"},
		{Sender: SenderAssistant, Text: "dos"},
		{Sender: SenderUser, Text: "tres"},
		{Sender: SenderAssistant, Text: "cuatro"},
		{Sender: SenderUser, Text: "cinco"},
		{Sender: SenderAssistant, Text: "seis"},
		{Sender: SenderUser, Text: "siete"},
	}

	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got []Message, _ Snapshot) (*Result, error) {
			require.Len(t, got, 5)
			assert.Equal(t, "tres", got[0].Text)
			assert.Equal(t, "siete", got[4].Text)
			return &Result{Reply: "ok"}, nil
		})

	_, err := f.svc.Handle(context.Background(), history)
	require.NoError(t, err)
}

func TestService_Handle_RejectsConcurrentSubmission(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.interpreter.EXPECT().
		Interpret(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []Message, Snapshot) (*Result, error) {
			// A submission arriving while this one is in flight is turned away.
			_, err := f.svc.Handle(ctx, userSays("otra"))
			assert.ErrorIs(t, err, ErrBusy)
			return &Result{Reply: "ok"}, nil
		})

	res, err := f.svc.Handle(ctx, userSays("primera"))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Reply)
}
