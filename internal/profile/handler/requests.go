package handler

import profileservice "talenthunt/internal/profile/service"

// DetailsRequest is the POST /update/details body.
type DetailsRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ContactNumber string `json:"contact_number"`
	Gender        string `json:"gender"`
}

func (r DetailsRequest) ToUpdate() profileservice.DetailsUpdate {
	return profileservice.DetailsUpdate{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		ContactNumber: r.ContactNumber,
		Gender:        r.Gender,
	}
}

// BioRequest is the POST /update/bio body.
type BioRequest struct {
	Bio string `json:"bio"`
}
