package engine

import "errors"

// Sentinel error kinds from spec.md §7. The crdt package re-exports these
// under its own public names so callers never need to import the internal
// engine package directly.
var (
	ErrUnknownID          = errors.New("engine: unknown id")
	ErrIndexOutOfBounds   = errors.New("engine: index out of bounds")
	ErrInvariantViolation = errors.New("engine: invariant violation")
)
