// Package store declares the pending-signup persistence contract.
package store

import (
	"context"
	"time"

	"talenthunt/internal/registration/models"
)

// PendingStore holds pending signups keyed by their opaque registration
// token. Records expire after the TTL given at creation; an expired or
// missing record is sentinel.ErrNotFound.
type PendingStore interface {
	Create(ctx context.Context, pending *models.PendingSignup, ttl time.Duration) error
	Find(ctx context.Context, token string) (*models.PendingSignup, error)
	Delete(ctx context.Context, token string) error
}
