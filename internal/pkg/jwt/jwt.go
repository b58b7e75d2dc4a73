package jwt

import (
	"context"
	"errors"
)

var (
	// ErrInvalidSigningMethod is returned when the token alg is not accepted.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")
	// ErrSigningKeyTooShort is returned for HMAC secrets under 32 bytes.
	ErrSigningKeyTooShort = errors.New("HMAC signing key must be at least 32 bytes")
	// ErrTokenExpired is returned when the token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")
	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT verifies a raw bearer token and returns its claims.
type JWT interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Claims is the authenticated identity. Subject is the identity-provider
// user ID (the Firebase uid).
type Claims struct {
	Subject string
	Email   string
}

type authContextKey struct{}

// GetAuth returns the claims stored by SetAuth, or nil.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authContextKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authContextKey{}, clm)
}
