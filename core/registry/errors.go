package registry

import "errors"

var (
	// ErrDuplicateID is returned when registering an id that already exists.
	ErrDuplicateID = errors.New("cell id already registered")
	// ErrNotFound is returned when the cell id is unknown.
	ErrNotFound = errors.New("cell not found")
	// ErrInvalidAttributes is returned when cell attributes violate their
	// invariants.
	ErrInvalidAttributes = errors.New("invalid cell attributes")
)
