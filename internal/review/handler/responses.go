package handler

import (
	"time"

	"talenthunt/internal/review/models"
	"talenthunt/internal/review/policy"
	id "talenthunt/pkg/domain"
)

// ReviewResponse is the review projection returned to clients. The reviewer
// identity is exposed only through DisplayName, so anonymous reviews stay
// anonymous on the wire.
type ReviewResponse struct {
	ID          string         `json:"id"`
	SubjectID   string         `json:"subject_id"`
	DisplayName string         `json:"display_name"`
	Ratings     models.Ratings `json:"ratings"`
	Texts       models.Texts   `json:"texts"`
	Anonymous   bool           `json:"anonymous"`
	Score       int            `json:"score"`
	YourVote    string         `json:"your_vote"`
	CanModify   bool           `json:"can_modify"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FromReview projects a review for the given viewer.
func FromReview(review *models.Review, viewer id.UserID) ReviewResponse {
	return ReviewResponse{
		ID:          review.ID.String(),
		SubjectID:   review.SubjectID.String(),
		DisplayName: review.DisplayName,
		Ratings:     review.Ratings,
		Texts:       review.Texts,
		Anonymous:   review.Anonymous,
		Score:       review.Score(),
		YourVote:    string(review.VoteOf(viewer)),
		CanModify:   policy.CanEdit(viewer, review),
		CreatedAt:   review.CreatedAt,
		UpdatedAt:   review.UpdatedAt,
	}
}

// FromReviews projects a list. Always returns a non-nil slice.
func FromReviews(reviews []*models.Review, viewer id.UserID) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, FromReview(r, viewer))
	}
	return out
}

// FeedResponse is the GET /home body.
type FeedResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
}

// VoteResponse returns the updated tally after a vote.
type VoteResponse struct {
	ReviewID string `json:"review_id"`
	Score    int    `json:"score"`
	YourVote string `json:"your_vote"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
