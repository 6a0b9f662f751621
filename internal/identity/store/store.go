// Package store declares the identity persistence contract. Implementations
// live in the user subpackage (memory for tests, postgres for production).
package store

import (
	"context"

	"talenthunt/internal/identity/models"
	id "talenthunt/pkg/domain"
)

// SearchFilter captures the keyword-search rules:
//   - First and Last set: both must substring-match (case-insensitive)
//   - Either set: matches first OR last name
//   - ExcludeUserID removes the acting user; admin accounts are always
//     excluded
type SearchFilter struct {
	First         string
	Last          string
	Either        string
	ExcludeUserID id.UserID
}

// UserStore persists identity records.
//
// CreateIfEmailAvailable must enforce email uniqueness atomically at write
// time (unique index, locked map); callers rely on sentinel.ErrAlreadyUsed
// rather than pre-checking.
type UserStore interface {
	CreateIfEmailAvailable(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Update persists mutable fields (names, password hash).
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, filter SearchFilter) ([]*models.User, error)
}
