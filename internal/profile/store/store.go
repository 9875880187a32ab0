package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/logger"
	"github.com/DxMxTx/autonomia/internal/profile"
)

type Store struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB) *Store {
	return &Store{db: db, log: logger.WithComponent("profile-store")}
}

// GetProfile returns the stored profile or nil. The profile is persisted
// as a single-element array for backup compatibility; a corrupt value is
// treated as absent.
func (s *Store) GetProfile(ctx context.Context) (*profile.Profile, error) {
	var p *profile.Profile

	err := s.db.View(func(r *database.Records) error {
		var wrapped []*profile.Profile
		if _, err := r.Load(database.KeyUserData, &wrapped); err != nil {
			s.log.Warn().Err(err).Msg("corrupt profile record, treating as unset")
			return nil
		}

		if len(wrapped) > 0 {
			p = wrapped[0]
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p *profile.Profile) error {
	return s.db.Update(func(r *database.Records) error {
		return r.Store(database.KeyUserData, []*profile.Profile{p})
	})
}
