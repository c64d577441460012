package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: record does not exist (including "no active rule set")
// - ErrConflict: uniqueness violated (rule set version, rule key, template key)
// - ErrInvalidState: record in the wrong lifecycle state for the operation
// - ErrUnavailable: backing store temporarily unavailable
//
// For validation errors (bad input, malformed trees), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
