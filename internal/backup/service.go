// Package backup serializes the full storage namespace to a single JSON
// document and restores it wholesale. The document's top-level keys are
// the storage keys themselves, so backups taken by older versions of the
// app restore cleanly.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/DxMxTx/autonomia/internal/agenda"
	"github.com/DxMxTx/autonomia/internal/client"
	"github.com/DxMxTx/autonomia/internal/database"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/invoice"
	"github.com/DxMxTx/autonomia/internal/logger"
	"github.com/DxMxTx/autonomia/internal/profile"
)

// ErrIncompleteBackup rejects a restore before anything is wiped.
var ErrIncompleteBackup = errors.New("backup file is incomplete or corrupt")

// essentialKeys must all be present for a restore to proceed. The down
// payment collection and the counter are optional for compatibility with
// backups from before those features existed.
var essentialKeys = []string{
	database.KeyClients,
	database.KeyInvoices,
	database.KeyAgendaEvents,
	database.KeyUserData,
}

type Service struct {
	db  *database.DB
	log zerolog.Logger
}

func NewService(db *database.DB) *Service {
	return &Service{db: db, log: logger.WithComponent("backup")}
}

var emptyArray = json.RawMessage("[]")

// Export snapshots every collection into one indented JSON document.
// The counter is exported as a JSON string, the profile as a wrapped
// single-element array, matching the historical format.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	doc := map[string]json.RawMessage{}

	err := s.db.View(func(r *database.Records) error {
		for _, key := range []string{
			database.KeyClients,
			database.KeyInvoices,
			database.KeyAgendaEvents,
			database.KeyDownPayments,
			database.KeyUserData,
		} {
			if raw := r.Raw(key); raw != nil {
				doc[key] = raw
			} else {
				doc[key] = emptyArray
			}
		}

		counter, ok := r.LoadString(database.KeyCounter)
		if !ok {
			counter = "0"
		}

		doc[database.KeyCounter] = json.RawMessage(strconv.Quote(counter))

		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}

	return data, nil
}

// Restore validates the document and then replaces every collection in a
// single transaction. A rejected document leaves the existing data
// untouched. Restoring resets the invoice counter to the backed-up
// value, so numbers issued afterwards are only unique relative to it.
func (s *Service) Restore(ctx context.Context, data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteBackup, err)
	}

	for _, key := range essentialKeys {
		if _, ok := doc[key]; !ok {
			return fmt.Errorf("%w: missing %q", ErrIncompleteBackup, key)
		}
	}

	if err := validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteBackup, err)
	}

	counter := counterValue(doc[database.KeyCounter])

	err := s.db.Update(func(r *database.Records) error {
		for _, key := range database.Keys {
			if err := r.Delete(key); err != nil {
				return err
			}
		}

		for _, key := range database.Keys {
			if key == database.KeyCounter {
				continue
			}

			raw, ok := doc[key]
			if !ok {
				continue
			}

			if err := r.StoreString(key, string(raw)); err != nil {
				return err
			}
		}

		return r.StoreString(database.KeyCounter, counter)
	})
	if err != nil {
		return err
	}

	s.log.Info().Msg("database restored from backup")

	return nil
}

// validate checks that every collection present decodes into its type,
// before any existing data is dropped.
func validate(doc map[string]json.RawMessage) error {
	targets := map[string]any{
		database.KeyClients:      &[]*client.Client{},
		database.KeyInvoices:     &[]*invoice.Invoice{},
		database.KeyAgendaEvents: &[]*agenda.Event{},
		database.KeyUserData:     &[]*profile.Profile{},
		database.KeyDownPayments: &[]*downpayment.DownPayment{},
	}

	for key, target := range targets {
		raw, ok := doc[key]
		if !ok {
			continue
		}

		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("bad %q collection: %v", key, err)
		}
	}

	return nil
}

// counterValue accepts the counter as a JSON string or bare number and
// falls back to zero for anything else.
func counterValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "0"
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if _, err := strconv.ParseInt(asString, 10, 64); err == nil {
			return asString
		}
		return "0"
	}

	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.FormatInt(asNumber, 10)
	}

	return "0"
}
