// Package store declares the profile persistence contract.
package store

import (
	"context"

	"talenthunt/internal/profile/models"
	id "talenthunt/pkg/domain"
)

// ProfileStore persists profiles keyed by the owning user.
//
// Contact-number uniqueness is enforced at write time: Save returns
// sentinel.ErrAlreadyUsed when another profile already holds the number.
type ProfileStore interface {
	// GetOrCreate returns the user's profile, creating an empty one if
	// absent. Never creates duplicates.
	GetOrCreate(ctx context.Context, userID id.UserID) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Profile, error)
	// FindByContactNumber supports pre-registration duplicate checks.
	FindByContactNumber(ctx context.Context, contact string) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
}
