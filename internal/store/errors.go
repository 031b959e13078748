package store

import "errors"

var (
	// ErrNotFound is returned when no journal entry has the requested id.
	ErrNotFound = errors.New("journal entry not found")
	// ErrInvalidFilter is returned by List for a kind it does not know.
	ErrInvalidFilter = errors.New("invalid journal filter")
)
