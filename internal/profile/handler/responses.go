package handler

import (
	"time"

	identitymodels "talenthunt/internal/identity/models"
	profilemodels "talenthunt/internal/profile/models"
	reviewhandler "talenthunt/internal/review/handler"
)

// ProfileResponse is the profile projection returned to clients.
type ProfileResponse struct {
	ContactNumber string    `json:"contact_number,omitempty"`
	Gender        string    `json:"gender"`
	Bio           string    `json:"bio"`
	HasPhoto      bool      `json:"has_photo"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromProfile(p *profilemodels.Profile) ProfileResponse {
	return ProfileResponse{
		ContactNumber: p.ContactNumber,
		Gender:        string(p.Gender),
		Bio:           p.Bio,
		HasPhoto:      p.PhotoRef != "",
		UpdatedAt:     p.UpdatedAt,
	}
}

// UserView is the identity slice of the profile page.
type UserView struct {
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *identitymodels.User) UserView {
	return UserView{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// PageResponse is the GET /user/{username} body: the subject's identity,
// profile, reviews received, and the viewer's own review of them if any.
type PageResponse struct {
	User            UserView                       `json:"user"`
	Profile         ProfileResponse                `json:"profile"`
	ReviewsReceived []reviewhandler.ReviewResponse `json:"reviews_received"`
	YourReview      *reviewhandler.ReviewResponse  `json:"your_review,omitempty"`
	IsSelf          bool                           `json:"is_self"`
}
