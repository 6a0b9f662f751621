package models

import (
	"fmt"
	"time"

	id "talenthunt/pkg/domain"
	dErrors "talenthunt/pkg/domain-errors"
)

const (
	minRating = 0
	maxRating = 5
)

// Direction is a vote direction. Values match the persisted representation.
type Direction int

const (
	DirectionDown Direction = -1
	DirectionUp   Direction = 1
)

// ParseDirection constructs a Direction from external input.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	default:
		return 0, dErrors.NewField(dErrors.CodeInvalidInput, "direction", "direction must be up or down")
	}
}

func (d Direction) String() string {
	if d == DirectionUp {
		return "up"
	}
	return "down"
}

// VoteState is an actor's standing on a review after a vote is applied.
type VoteState string

const (
	VoteNone VoteState = "none"
	VoteUp   VoteState = "up"
	VoteDown VoteState = "down"
)

// Ratings holds the three 0-5 category scores.
type Ratings struct {
	ProblemSolving int `json:"problem_solving"`
	Communication  int `json:"communication"`
	Sociability    int `json:"sociability"`
}

// Validate checks each score is within bounds.
func (r Ratings) Validate() error {
	for _, c := range []struct {
		field string
		value int
	}{
		{"rating_problem_solving", r.ProblemSolving},
		{"rating_communication", r.Communication},
		{"rating_sociability", r.Sociability},
	} {
		if c.value < minRating || c.value > maxRating {
			return dErrors.NewField(dErrors.CodeInvalidInput, c.field,
				fmt.Sprintf("%s must be between %d and %d", c.field, minRating, maxRating))
		}
	}
	return nil
}

// Texts holds the free-text commentary matching the rating categories.
type Texts struct {
	ProblemSolving string `json:"problem_solving"`
	Communication  string `json:"communication"`
	Sociability    string `json:"sociability"`
}

// Review is the aggregate root for one reviewer's assessment of one subject.
//
// Invariants:
//   - At most one review per (reviewer, subject) pair, enforced by the store
//   - Reviewer and subject are distinct users
//   - DisplayName hides the reviewer when Anonymous; authorization always
//     uses ReviewerID, never the display name
//   - Each voter holds at most one of {upvote, downvote}
type Review struct {
	ID          id.ReviewID `json:"id"`
	ReviewerID  id.UserID   `json:"-"`
	SubjectID   id.UserID   `json:"subject_id"`
	Ratings     Ratings     `json:"ratings"`
	Texts       Texts       `json:"texts"`
	Anonymous   bool        `json:"anonymous"`
	DisplayName string      `json:"display_name"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Upvoters   map[id.UserID]struct{} `json:"-"`
	Downvoters map[id.UserID]struct{} `json:"-"`
}

// NewReview constructs a validated review. The display name is derived from
// the anonymity flag: the sentinel when anonymous, the reviewer's username
// otherwise.
func NewReview(reviewerID, subjectID id.UserID, ratings Ratings, texts Texts, anonymous bool, reviewerUsername, anonymousSentinel string, now time.Time) (*Review, error) {
	if reviewerID.IsZero() || subjectID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reviewer and subject are required")
	}
	if reviewerID == subjectID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "you cannot review yourself")
	}
	if err := ratings.Validate(); err != nil {
		return nil, err
	}

	return &Review{
		ID:          id.NewReviewID(),
		ReviewerID:  reviewerID,
		SubjectID:   subjectID,
		Ratings:     ratings,
		Texts:       texts,
		Anonymous:   anonymous,
		DisplayName: deriveDisplayName(anonymous, reviewerUsername, anonymousSentinel),
		CreatedAt:   now,
		UpdatedAt:   now,
		Upvoters:    make(map[id.UserID]struct{}),
		Downvoters:  make(map[id.UserID]struct{}),
	}, nil
}

// Amend applies the mutable fields and re-derives the display name.
func (r *Review) Amend(ratings Ratings, texts Texts, anonymous bool, reviewerUsername, anonymousSentinel string, now time.Time) error {
	if err := ratings.Validate(); err != nil {
		return err
	}
	r.Ratings = ratings
	r.Texts = texts
	r.Anonymous = anonymous
	r.DisplayName = deriveDisplayName(anonymous, reviewerUsername, anonymousSentinel)
	r.UpdatedAt = now
	return nil
}

// ApplyVote applies the toggle semantics and returns the actor's resulting
// state: same direction retracts, opposite direction flips.
func (r *Review) ApplyVote(actor id.UserID, direction Direction) VoteState {
	if r.Upvoters == nil {
		r.Upvoters = make(map[id.UserID]struct{})
	}
	if r.Downvoters == nil {
		r.Downvoters = make(map[id.UserID]struct{})
	}

	switch direction {
	case DirectionUp:
		if _, voted := r.Upvoters[actor]; voted {
			delete(r.Upvoters, actor)
			return VoteNone
		}
		delete(r.Downvoters, actor)
		r.Upvoters[actor] = struct{}{}
		return VoteUp
	default:
		if _, voted := r.Downvoters[actor]; voted {
			delete(r.Downvoters, actor)
			return VoteNone
		}
		delete(r.Upvoters, actor)
		r.Downvoters[actor] = struct{}{}
		return VoteDown
	}
}

// VoteOf reports the actor's current standing.
func (r *Review) VoteOf(actor id.UserID) VoteState {
	if _, ok := r.Upvoters[actor]; ok {
		return VoteUp
	}
	if _, ok := r.Downvoters[actor]; ok {
		return VoteDown
	}
	return VoteNone
}

// Score is the net vote tally: upvotes minus downvotes.
func (r *Review) Score() int {
	return len(r.Upvoters) - len(r.Downvoters)
}

func deriveDisplayName(anonymous bool, reviewerUsername, anonymousSentinel string) string {
	if anonymous {
		return anonymousSentinel
	}
	return reviewerUsername
}
