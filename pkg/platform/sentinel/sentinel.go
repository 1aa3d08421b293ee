package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the encryption
// provider return these (optionally wrapped) so services can translate them
// into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: entity already exists or uniqueness violated
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrDenied: principal lacks an access grant on an encrypted value
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrDenied       = errors.New("denied")
	ErrUnavailable  = errors.New("unavailable")
)
