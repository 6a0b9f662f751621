package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
)

const (
	contactNumberLength = 10
	maxBioLength        = 500
)

// Gender is the enumerated profile gender.
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"
)

var validGenders = map[Gender]bool{
	GenderMale:        true,
	GenderFemale:      true,
	GenderOther:       true,
	GenderUnspecified: true,
}

// ParseGender constructs a Gender from external input. Empty input maps to
// unspecified.
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return GenderUnspecified, nil
	}
	g := Gender(s)
	if !validGenders[g] {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "gender", "gender must be one of male, female, other, unspecified")
	}
	return g, nil
}

// Profile is the one-to-one extension of a user holding non-authentication
// personal data.
//
// Invariants:
//   - At most one profile per user (primary-keyed on UserID)
//   - ContactNumber, once set, is exactly 10 digits and globally unique
//   - Bio never exceeds 500 characters
type Profile struct {
	UserID        id.UserID `json:"user_id"`
	ContactNumber string    `json:"contact_number"`
	Gender        Gender    `json:"gender"`
	Bio           string    `json:"bio"`
	PhotoRef      string    `json:"photo_ref,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProfile constructs an empty profile for the user.
func NewProfile(userID id.UserID, now time.Time) *Profile {
	return &Profile{
		UserID:    userID,
		Gender:    GenderUnspecified,
		UpdatedAt: now,
	}
}

// SetContactNumber validates and applies a new contact number. Global
// uniqueness is the store's responsibility; shape is validated here.
func (p *Profile) SetContactNumber(contact string) error {
	if err := ValidateContactNumber(contact); err != nil {
		return err
	}
	p.ContactNumber = contact
	return nil
}

// SetBio replaces the bio, enforcing the length bound. The bound counts
// characters, not bytes, so multibyte text gets the full 500.
func (p *Profile) SetBio(bio string) error {
	if utf8.RuneCountInString(bio) > maxBioLength {
		return dErrors.NewField(dErrors.CodeInvalidInput, "bio", fmt.Sprintf("bio must be %d characters or less", maxBioLength))
	}
	p.Bio = bio
	return nil
}

// ValidateContactNumber rejects anything but exactly 10 ASCII digits.
func ValidateContactNumber(contact string) error {
	if len(contact) != contactNumberLength {
		return dErrors.NewField(dErrors.CodeInvalidInput, "contact_number", "contact number should be a 10-digit number")
	}
	for _, r := range contact {
		if r < '0' || r > '9' {
			return dErrors.NewField(dErrors.CodeInvalidInput, "contact_number", "contact number should be a 10-digit number")
		}
	}
	return nil
}
