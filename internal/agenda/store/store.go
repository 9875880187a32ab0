package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/agenda"
	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/logger"
)

type Store struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB) *Store {
	return &Store{db: db, log: logger.WithComponent("agenda-store")}
}

func (s *Store) ListEvents(ctx context.Context) ([]*agenda.Event, error) {
	var events []*agenda.Event

	err := s.db.View(func(r *database.Records) error {
		if _, err := r.Load(database.KeyAgendaEvents, &events); err != nil {
			s.log.Warn().Err(err).Msg("corrupt agenda collection, treating as empty")
			events = nil
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *agenda.Event) error {
	return s.db.Update(func(r *database.Records) error {
		var events []*agenda.Event
		if _, err := r.Load(database.KeyAgendaEvents, &events); err != nil {
			s.log.Warn().Err(err).Msg("corrupt agenda collection, rebuilding")
			events = nil
		}

		return r.Store(database.KeyAgendaEvents, append(events, e))
	})
}
