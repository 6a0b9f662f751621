// Package store declares the review persistence contract.
package store

import (
	"context"
	"time"

	"talenthunt/internal/review/models"
	id "talenthunt/pkg/domain"
)

// ReviewStore persists reviews and their votes.
//
// Pair uniqueness is enforced at write time: CreateIfPairAvailable returns
// sentinel.ErrAlreadyUsed when the (reviewer, subject) pair already has a
// review. All reads return reviews with vote sets populated. List results are
// ordered by creation time, then id, so pagination and rendering are stable.
type ReviewStore interface {
	CreateIfPairAvailable(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	FindByPair(ctx context.Context, reviewerID, subjectID id.UserID) (*models.Review, error)
	// Update persists the mutable fields (ratings, texts, anonymity,
	// display name, updated_at). Votes are written through SetVote.
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID id.ReviewID) error
	// SetVote records the actor's standing after a toggle: up or down
	// upserts the vote row, none removes it.
	SetVote(ctx context.Context, reviewID id.ReviewID, voterID id.UserID, state models.VoteState, castAt time.Time) error
	ListReceived(ctx context.Context, subjectID id.UserID) ([]*models.Review, error)
	ListGiven(ctx context.Context, reviewerID id.UserID) ([]*models.Review, error)
	ListAll(ctx context.Context) ([]*models.Review, error)
}
