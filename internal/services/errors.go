package services

import "errors"

// Error kinds surfaced by the engines. Callers match with errors.Is; the API
// layer maps ErrNotFound to 404 and ErrInvalidState to 400.
var (
	// ErrNotFound - referenced entity does not exist or belongs to another owner.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState - operation violates an entity invariant.
	ErrInvalidState = errors.New("invalid state")
)
