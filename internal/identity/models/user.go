package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
)

const maxNameLength = 100

// User is the aggregate root for an account holder.
//
// Invariants:
//   - Email is unique across users (enforced by the store at write time)
//   - Username is unique and derived, never user-chosen
//   - PasswordHash always holds a bcrypt digest, never plaintext
//   - Admin accounts are excluded from search results
type User struct {
	ID           id.UserID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName is the name shown on reviews and search results.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Rename updates the user's name fields after validation.
func (u *User) Rename(first, last string) error {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if err := validateName("first_name", first); err != nil {
		return err
	}
	if err := validateName("last_name", last); err != nil {
		return err
	}
	u.FirstName = first
	u.LastName = last
	return nil
}

// NewUser constructs a user with a derived username.
//
// The username is lowercase(first-last-UTC timestamp); the timestamp makes
// collisions between same-named users practically impossible while keeping
// the handle readable.
func NewUser(first, last, email, passwordHash string, now time.Time) (*User, error) {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateName("first_name", first); err != nil {
		return nil, err
	}
	if err := validateName("last_name", last); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}

	return &User{
		ID:           id.NewUserID(),
		Username:     DeriveUsername(first, last, now),
		Email:        email,
		FirstName:    first,
		LastName:     last,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// DeriveUsername builds the generated handle: lowercase first-last-timestamp.
func DeriveUsername(first, last string, now time.Time) string {
	return strings.ToLower(fmt.Sprintf("%s-%s-%s", first, last, now.UTC().Format("20060102150405")))
}

// ValidateEmail rejects addresses the mail parser cannot accept.
func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.NewField(dErrors.CodeInvalidInput, "email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return dErrors.NewField(dErrors.CodeInvalidInput, "email", "email is not a valid address")
	}
	return nil
}

func validateName(field, name string) error {
	if name == "" {
		return dErrors.NewField(dErrors.CodeInvalidInput, field, field+" is required")
	}
	if len(name) > maxNameLength {
		return dErrors.NewField(dErrors.CodeInvalidInput, field, fmt.Sprintf("%s must be %d characters or less", field, maxNameLength))
	}
	return nil
}
