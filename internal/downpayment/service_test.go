package downpayment_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/downpayment/store"
)

func newService(t *testing.T) *downpayment.Service {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return downpayment.NewService(store.New(db))
}

func TestService_Add(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	d, err := svc.Add(ctx, "cli_1", decimal.NewFromFloat(100.005), "anticipo")
	require.NoError(t, err)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "cli_1", d.ClientID)
	assert.Equal(t, "100.00", d.Amount.StringFixed(2))
	assert.Equal(t, "anticipo", d.Description)
	assert.True(t, d.Available())
	assert.False(t, d.Date.IsZero())
}

func TestService_Add_InvalidAmount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "cli_1", decimal.Zero, "sin importe")
	require.ErrorIs(t, err, downpayment.ErrInvalidAmount)

	_, err = svc.Add(ctx, "cli_1", decimal.NewFromInt(-5), "negativo")
	require.ErrorIs(t, err, downpayment.ErrInvalidAmount)

	payments, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestService_List_InsertionOrder(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, desc := range []string{"primero", "segundo", "tercero"} {
		_, err := svc.Add(ctx, "cli_1", decimal.NewFromInt(10), desc)
		require.NoError(t, err)
	}

	payments, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 3)

	assert.Equal(t, "primero", payments[0].Description)
	assert.Equal(t, "segundo", payments[1].Description)
	assert.Equal(t, "tercero", payments[2].Description)
}
