package handler

import registrationservice "talenthunt/internal/registration/service"

// SignupRequest is the POST /signup body.
type SignupRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contact_number"`
	Gender        string `json:"gender"`
}

func (r SignupRequest) ToSignup() registrationservice.Signup {
	return registrationservice.Signup{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Password:      r.Password,
		ContactNumber: r.ContactNumber,
		Gender:        r.Gender,
	}
}

// VerifyRequest is the POST /verify body.
type VerifyRequest struct {
	RegistrationToken string `json:"registration_token"`
	OTP               string `json:"otp"`
}
