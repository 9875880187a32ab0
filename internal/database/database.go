// Package database wraps a bbolt file database behind the small key-value
// contract the rest of the application stores its collections in: one
// bucket, one logical key per collection, JSON-encoded values.
package database

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Storage keys, one per persisted collection. The names are kept
// compatible with backups produced by earlier versions of the app.
const (
	KeyClients      = "autonomo_clients"
	KeyInvoices     = "autonomo_invoices"
	KeyAgendaEvents = "autonomo_agenda_events"
	KeyCounter      = "autonomo_invoice_counter"
	KeyUserData     = "autonomo_user_data"
	KeyDownPayments = "autonomo_down_payments"
)

// Keys lists every storage key. Used by restore to wipe the namespace.
var Keys = []string{
	KeyClients,
	KeyInvoices,
	KeyAgendaEvents,
	KeyCounter,
	KeyUserData,
	KeyDownPayments,
}

const bucketName = "autonomo"

// DB is the bbolt database wrapper shared by all stores.
type DB struct {
	bolt *bolt.DB
}

// New opens (or creates) the database file and initializes the bucket.
func New(path string) (*DB, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing bucket: %w", err)
	}

	return &DB{bolt: db}, nil
}

func (d *DB) Close() error {
	return d.bolt.Close()
}

// View runs fn in a read-only transaction.
func (d *DB) View(fn func(r *Records) error) error {
	return d.bolt.View(func(tx *bolt.Tx) error {
		return fn(recordsIn(tx))
	})
}

// Update runs fn in a single writable transaction. Everything written
// inside fn commits or rolls back together.
func (d *DB) Update(fn func(r *Records) error) error {
	return d.bolt.Update(func(tx *bolt.Tx) error {
		return fn(recordsIn(tx))
	})
}

// Begin starts a manual writable transaction for callers that need to
// hold it across several steps. The caller owns Commit/Rollback.
func (d *DB) Begin() (*Tx, error) {
	tx, err := d.bolt.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &Tx{tx: tx}, nil
}

// Tx is a writable transaction over the record namespace.
type Tx struct {
	tx *bolt.Tx
}

func (t *Tx) Records() *Records { return recordsIn(t.tx) }
func (t *Tx) Commit() error     { return t.tx.Commit() }
func (t *Tx) Rollback() error   { return t.tx.Rollback() }

func recordsIn(tx *bolt.Tx) *Records {
	return &Records{b: tx.Bucket([]byte(bucketName))}
}

// Records gives typed access to the values stored under the logical keys.
type Records struct {
	b *bolt.Bucket
}

// Load unmarshals the value stored under key into v. A missing key
// returns (false, nil) and leaves v untouched.
func (r *Records) Load(key string, v any) (bool, error) {
	data := r.b.Get([]byte(key))
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %q: %w", key, err)
	}

	return true, nil
}

// Store marshals v and writes it under key.
func (r *Records) Store(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	if err := r.b.Put([]byte(key), data); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}

	return nil
}

// LoadString reads a raw string value, e.g. the invoice counter.
func (r *Records) LoadString(key string) (string, bool) {
	data := r.b.Get([]byte(key))
	if data == nil {
		return "", false
	}

	return string(data), true
}

// StoreString writes a raw string value under key.
func (r *Records) StoreString(key, value string) error {
	if err := r.b.Put([]byte(key), []byte(value)); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}

	return nil
}

// Raw returns a copy of the bytes stored under key, or nil when absent.
// Used by backup, which round-trips values without reinterpreting them.
func (r *Records) Raw(key string) []byte {
	data := r.b.Get([]byte(key))
	if data == nil {
		return nil
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out
}

// Delete removes the value stored under key.
func (r *Records) Delete(key string) error {
	return r.b.Delete([]byte(key))
}
