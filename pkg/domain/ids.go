// Package domain defines the typed identifiers shared across verticals.
//
// IDs are distinct types over uuid.UUID so the compiler rejects mixing a
// ReviewID where a UserID is expected. Construct via the Parse helpers at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "talenthunt/pkg/domain-errors"
)

type (
	// UserID identifies an account holder.
	UserID uuid.UUID
	// ReviewID identifies a review.
	ReviewID uuid.UUID
	// SessionID identifies an authenticated session.
	SessionID uuid.UUID
)

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id ReviewID) String() string  { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ReviewID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID generates a fresh user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewReviewID generates a fresh review identifier.
func NewReviewID() ReviewID { return ReviewID(uuid.New()) }

// NewSessionID generates a fresh session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// ParseUserID constructs a UserID from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil
// UUID; no other errors are expected.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseReviewID constructs a ReviewID from external input.
func ParseReviewID(s string) (ReviewID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ReviewID{}, err
	}
	return ReviewID(u), nil
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
