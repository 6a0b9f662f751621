package handler

// SignupResponse acknowledges a pending signup.
type SignupResponse struct {
	RegistrationToken string `json:"registration_token"`
	Message           string `json:"message"`
}

// VerifyResponse acknowledges a created account.
type VerifyResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}
