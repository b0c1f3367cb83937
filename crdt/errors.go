package crdt

import (
	"errors"

	"textweave/internal/engine"
)

// Error kinds from spec.md §7. IndexOutOfBounds, UnknownID and
// InvariantViolation are the engine's own sentinels, re-exported here so
// callers never need to import the internal engine package.
var (
	ErrIndexOutOfBounds   = engine.ErrIndexOutOfBounds
	ErrUnknownID          = engine.ErrUnknownID
	ErrInvariantViolation = engine.ErrInvariantViolation
	ErrNotImplemented     = errors.New("crdt: not implemented")
)
