package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/logger"
)

type Store struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB) *Store {
	return &Store{db: db, log: logger.WithComponent("downpayment-store")}
}

func (s *Store) ListDownPayments(ctx context.Context) ([]*downpayment.DownPayment, error) {
	var payments []*downpayment.DownPayment

	err := s.db.View(func(r *database.Records) error {
		if _, err := r.Load(database.KeyDownPayments, &payments); err != nil {
			s.log.Warn().Err(err).Msg("corrupt down payment collection, treating as empty")
			payments = nil
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (s *Store) AppendDownPayment(ctx context.Context, d *downpayment.DownPayment) error {
	return s.db.Update(func(r *database.Records) error {
		var payments []*downpayment.DownPayment
		if _, err := r.Load(database.KeyDownPayments, &payments); err != nil {
			s.log.Warn().Err(err).Msg("corrupt down payment collection, rebuilding")
			payments = nil
		}

		return r.Store(database.KeyDownPayments, append(payments, d))
	})
}
