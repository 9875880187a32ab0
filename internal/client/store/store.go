package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/client"
	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/logger"
)

type Store struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB) *Store {
	return &Store{db: db, log: logger.WithComponent("client-store")}
}

func (s *Store) ListClients(ctx context.Context) ([]*client.Client, error) {
	var clients []*client.Client

	err := s.db.View(func(r *database.Records) error {
		if _, err := r.Load(database.KeyClients, &clients); err != nil {
			s.log.Warn().Err(err).Msg("corrupt client collection, treating as empty")
			clients = nil
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return clients, nil
}

func (s *Store) AppendClient(ctx context.Context, c *client.Client) error {
	return s.db.Update(func(r *database.Records) error {
		var clients []*client.Client
		if _, err := r.Load(database.KeyClients, &clients); err != nil {
			s.log.Warn().Err(err).Msg("corrupt client collection, rebuilding")
			clients = nil
		}

		return r.Store(database.KeyClients, append(clients, c))
	})
}
