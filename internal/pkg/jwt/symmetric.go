package jwt

import (
	"context"
	"errors"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

type clocker interface {
	Now() time.Time
}

// SymmetricConfig configures an HS256 signer/verifier.
type SymmetricConfig struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
}

type symmetricClaims struct {
	libJWT.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Symmetric signs and verifies HS256 tokens.
type Symmetric struct {
	secret    []byte
	issuer    string
	audiences []string
	ttl       time.Duration
	clock     clocker
}

func NewSymmetric(cfg SymmetricConfig) (*Symmetric, error) {
	if len(cfg.Secret) < 32 {
		return nil, ErrSigningKeyTooShort
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Symmetric{
		secret:    cfg.Secret,
		issuer:    cfg.Issuer,
		audiences: cfg.Audiences,
		ttl:       ttl,
		clock:     cfg.Clock,
	}, nil
}

// Generate signs a token for the given subject.
func (s *Symmetric) Generate(subject, email string) (string, error) {
	now := s.clock.Now()

	return libJWT.NewWithClaims(libJWT.SigningMethodHS256, symmetricClaims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			Audience:  s.audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
	}).SignedString(s.secret)
}

func (s *Symmetric) Verify(_ context.Context, token string) (Claims, error) {
	var clm symmetricClaims

	opts := []libJWT.ParserOption{
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS256.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	}
	if s.issuer != "" {
		opts = append(opts, libJWT.WithIssuer(s.issuer))
	}
	if len(s.audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(s.audiences...))
	}

	parsed, err := libJWT.ParseWithClaims(token, &clm, func(t *libJWT.Token) (any, error) {
		if t.Method != libJWT.SigningMethodHS256 {
			return nil, ErrInvalidSigningMethod
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, err
	}

	if !parsed.Valid || clm.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Subject: clm.Subject, Email: clm.Email}, nil
}
