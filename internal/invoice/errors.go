package invoice

import "errors"

var (
	// ErrNotFound is returned when no invoice matches the given id or number.
	ErrNotFound = errors.New("invoice not found")

	// ErrNoLines rejects invoice creation before anything is written.
	ErrNoLines = errors.New("an invoice needs at least one line with a concept, quantity and unit price")
)
