// Package policy holds the pure access-control predicates for reviews. No
// side effects, no store access; callers load the aggregate first.
package policy

import (
	"talenthunt/internal/review/models"
	id "talenthunt/pkg/domain"
)

// CanEdit reports whether the actor may edit the review. Authorization is by
// the stored reviewer identity; the anonymized display name never grants or
// denies anything.
func CanEdit(actor id.UserID, review *models.Review) bool {
	return !actor.IsZero() && actor == review.ReviewerID
}

// CanDelete mirrors CanEdit.
func CanDelete(actor id.UserID, review *models.Review) bool {
	return CanEdit(actor, review)
}

// CanVote reports whether the actor may vote. Any authenticated user may,
// including the reviewer and the subject.
func CanVote(actor id.UserID, _ *models.Review) bool {
	return !actor.IsZero()
}

// CanCreate reports whether the actor may create a review of the subject: no
// self-review, and no existing review for the pair (the caller routes to edit
// instead).
func CanCreate(actor, subject id.UserID, existing *models.Review) bool {
	if actor.IsZero() || actor == subject {
		return false
	}
	return existing == nil
}
