package handler

import (
	"talenthunt/internal/review/models"
	reviewservice "talenthunt/internal/review/service"
)

// ReviewRequest is the body for creating or editing a review.
type ReviewRequest struct {
	RatingProblemSolving int    `json:"rating_problem_solving"`
	RatingCommunication  int    `json:"rating_communication"`
	RatingSociability    int    `json:"rating_sociability"`
	ProblemSolving       string `json:"problem_solving"`
	Communication        string `json:"communication"`
	Sociability          string `json:"sociability"`
	Anonymous            bool   `json:"anonymous"`
}

func (r ReviewRequest) ToDraft() reviewservice.Draft {
	return reviewservice.Draft{
		Ratings: models.Ratings{
			ProblemSolving: r.RatingProblemSolving,
			Communication:  r.RatingCommunication,
			Sociability:    r.RatingSociability,
		},
		Texts: models.Texts{
			ProblemSolving: r.ProblemSolving,
			Communication:  r.Communication,
			Sociability:    r.Sociability,
		},
		Anonymous: r.Anonymous,
	}
}

// VoteRequest is the body for POST /home/vote and POST /user/{username}/vote.
type VoteRequest struct {
	ReviewID  string `json:"review_id"`
	Direction string `json:"direction"`
}
