package entity

import (
	"errors"
	"time"
)

var (
	ErrOTPNotFound        = errors.New("otp: no outstanding code")
	ErrOTPExpired         = errors.New("otp: code expired")
	ErrOTPTooManyAttempts = errors.New("otp: attempt limit reached")
	ErrOTPInvalidCode     = errors.New("otp: code mismatch")
)

// Record is the single outstanding code for an email.
type Record struct {
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Attempts  int
}

// ExpiredAt reports whether the record is unusable at now. The expiry
// instant itself already counts as expired.
func (r Record) ExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func (r Record) Exhausted(maxAttempts int) bool {
	return r.Attempts >= maxAttempts
}

// Delivery is what the mail adapter needs to send a code.
type Delivery struct {
	To   string
	Name string
	Code string
	TTL  time.Duration
}

// VerificationResult labels the outcome of a verification for metrics.
type VerificationResult string

const (
	ResultVerified        VerificationResult = "verified"
	ResultNotFound        VerificationResult = "not_found"
	ResultExpired         VerificationResult = "expired"
	ResultTooManyAttempts VerificationResult = "too_many_attempts"
	ResultInvalidCode     VerificationResult = "invalid_code"
	ResultError           VerificationResult = "error"
)
