// Package sentinel defines infrastructure-level sentinel errors. Stores
// return these (optionally wrapped) so services can translate them into coded
// domain errors without inspecting driver-specific failures.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: record does not exist in the store
//   - ErrAlreadyUsed: a uniqueness constraint (email, contact number, review
//     pair) rejected the write
//   - ErrExpired: pending registration or session has expired
//   - ErrInvalidState: record in the wrong state for the requested operation
//   - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
