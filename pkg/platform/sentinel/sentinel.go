package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (wrapped) so
// callers can translate them into domain errors:
// - ErrInvalidState: the store was asked for something it does not model
// - ErrUnavailable: the backing database or cache could not be reached
//
// For request validation failures use pkg/domain-errors directly.
var (
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
