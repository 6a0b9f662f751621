package models

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const otpDigits = 6

// PendingSignup is the short-lived state between signup submission and OTP
// verification. It never touches durable storage; the redis TTL bounds both
// its lifetime and the number of OTP attempts.
//
// The password is stored as a bcrypt hash even here, so a compromised pending
// store never yields plaintext credentials.
type PendingSignup struct {
	Token         string    `json:"token"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	ContactNumber string    `json:"contact_number"`
	Gender        string    `json:"gender"`
	PasswordHash  string    `json:"password_hash"`
	Code          string    `json:"code"`
	CreatedAt     time.Time `json:"created_at"`
}

// CodeMatches compares a submitted OTP in constant time.
func (p *PendingSignup) CodeMatches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(p.Code), []byte(code)) == 1
}

// GenerateOTP produces a 6-digit numeric code from crypto/rand. Leading
// zeros are preserved.
func GenerateOTP() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}
