package store

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/invoice"
	"github.com/DxMxTx/autonomia/internal/logger"
	"github.com/DxMxTx/autonomia/internal/profile"
)

type Store struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB) *Store {
	return &Store{db: db, log: logger.WithComponent("invoice-store")}
}

func (s *Store) ListInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	var invoices []*invoice.Invoice

	err := s.db.View(func(r *database.Records) error {
		invoices = s.loadInvoices(r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return invoices, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status invoice.Status) (*invoice.Invoice, error) {
	var updated *invoice.Invoice

	err := s.db.Update(func(r *database.Records) error {
		invoices := s.loadInvoices(r)

		for _, inv := range invoices {
			if inv.ID != id {
				continue
			}

			inv.Status = status
			updated = inv

			return r.Store(database.KeyInvoices, invoices)
		}

		// Unknown id: nothing is written.
		return invoice.ErrNotFound
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// BeginCreate opens the single writable transaction invoice creation runs
// in. The counter increment, down payment consumption and invoice append
// all commit together or not at all.
func (s *Store) BeginCreate(ctx context.Context) (invoice.CreateTx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	return &createTx{tx: tx, log: s.log}, nil
}

func (s *Store) loadInvoices(r *database.Records) []*invoice.Invoice {
	var invoices []*invoice.Invoice
	if _, err := r.Load(database.KeyInvoices, &invoices); err != nil {
		s.log.Warn().Err(err).Msg("corrupt invoice collection, treating as empty")
		return nil
	}

	return invoices
}

type createTx struct {
	tx  *database.Tx
	log zerolog.Logger
}

func (t *createTx) Commit() error   { return t.tx.Commit() }
func (t *createTx) Rollback() error { return t.tx.Rollback() }

// NextCounter advances the shared invoice counter. A missing or garbled
// stored value restarts the sequence from zero.
func (t *createTx) NextCounter() (int64, error) {
	r := t.tx.Records()

	var counter int64
	if raw, ok := r.LoadString(database.KeyCounter); ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			t.log.Warn().Str("value", raw).Msg("corrupt invoice counter, resetting")
		} else {
			counter = parsed
		}
	}

	counter++
	if err := r.StoreString(database.KeyCounter, strconv.FormatInt(counter, 10)); err != nil {
		return 0, err
	}

	return counter, nil
}

func (t *createTx) EmitterProfile() (*profile.Profile, error) {
	var wrapped []*profile.Profile
	if _, err := t.tx.Records().Load(database.KeyUserData, &wrapped); err != nil {
		t.log.Warn().Err(err).Msg("corrupt profile record, treating as unset")
		return nil, nil
	}

	if len(wrapped) == 0 {
		return nil, nil
	}

	return wrapped[0], nil
}

func (t *createTx) AvailableDownPayment(clientID string) (*downpayment.DownPayment, error) {
	for _, dp := range t.loadDownPayments() {
		if dp.ClientID == clientID && dp.Available() {
			return dp, nil
		}
	}

	return nil, nil
}

func (t *createTx) ConsumeDownPayment(id, invoiceID string) error {
	payments := t.loadDownPayments()

	for _, dp := range payments {
		if dp.ID == id {
			dp.AppliedInvoiceID = &invoiceID
			break
		}
	}

	return t.tx.Records().Store(database.KeyDownPayments, payments)
}

func (t *createTx) AppendInvoice(inv *invoice.Invoice) error {
	r := t.tx.Records()

	var invoices []*invoice.Invoice
	if _, err := r.Load(database.KeyInvoices, &invoices); err != nil {
		t.log.Warn().Err(err).Msg("corrupt invoice collection, rebuilding")
		invoices = nil
	}

	return r.Store(database.KeyInvoices, append(invoices, inv))
}

func (t *createTx) loadDownPayments() []*downpayment.DownPayment {
	var payments []*downpayment.DownPayment
	if _, err := t.tx.Records().Load(database.KeyDownPayments, &payments); err != nil {
		t.log.Warn().Err(err).Msg("corrupt down payment collection, treating as empty")
		return nil
	}

	return payments
}
