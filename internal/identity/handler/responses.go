package handler

import "talenthunt/internal/identity/models"

// LoginResponse acknowledges a successful login.
type LoginResponse struct {
	Username string `json:"username"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary is the search-result projection of a user.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SearchResponse wraps the search results.
type SearchResponse struct {
	Results []UserSummary `json:"results"`
}

// FromUsers projects users into search summaries. Always returns a non-nil
// slice so the JSON is [] rather than null.
func FromUsers(users []*models.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	return out
}
