// Package store declares the session persistence contract.
package store

import (
	"context"

	"talenthunt/internal/auth/models"
	id "talenthunt/pkg/domain"
)

// SessionStore persists authenticated sessions. Implementations bound the
// record lifetime to the session expiry (redis TTL, in-memory sweep on read).
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	// Revoke marks the session dead; sentinel.ErrNotFound if absent.
	Revoke(ctx context.Context, sessionID id.SessionID) error
}
