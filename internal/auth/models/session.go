package models

import (
	"time"

	id "talenthunt/pkg/domain"
)

// Session models an authenticated browser session.
//
// Invariants:
//   - ExpiresAt is strictly after CreatedAt
//   - A revoked session never becomes live again
type Session struct {
	ID        id.SessionID `json:"id"`
	UserID    id.UserID    `json:"user_id"`
	Username  string       `json:"username"`
	Device    string       `json:"device"`
	ClientIP  string       `json:"client_ip"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	RevokedAt *time.Time   `json:"revoked_at,omitempty"`
}

// IsLive reports whether the session is usable at the given instant.
func (s *Session) IsLive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Revoke marks the session dead. Idempotent: the first revocation timestamp
// wins.
func (s *Session) Revoke(now time.Time) {
	if s.RevokedAt == nil {
		s.RevokedAt = &now
	}
}
