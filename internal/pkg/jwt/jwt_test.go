package jwt

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSymmetric_RoundTrip(t *testing.T) {
	clk := clock.NewManual(time.Now())
	s, err := NewSymmetric(SymmetricConfig{
		Secret:    testSecret,
		Issuer:    "xceltrack-local",
		Audiences: []string{"xceltrack-api"},
		TTL:       time.Hour,
		Clock:     clk,
	})
	require.NoError(t, err)

	token, err := s.Generate("fb-uid-1", "alice@example.com")
	require.NoError(t, err)

	clm, err := s.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Claims{Subject: "fb-uid-1", Email: "alice@example.com"}, clm)

	clk.Advance(2 * time.Hour)
	_, err = s.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetric_Rejects(t *testing.T) {
	_, err := NewSymmetric(SymmetricConfig{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)

	s, err := NewSymmetric(SymmetricConfig{Secret: testSecret, Issuer: "a", Clock: clock.New()})
	require.NoError(t, err)

	other, err := NewSymmetric(SymmetricConfig{Secret: testSecret, Issuer: "b", Clock: clock.New()})
	require.NoError(t, err)

	token, err := other.Generate("uid", "")
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), token)
	assert.Error(t, err)

	_, err = s.Verify(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestAuthContext(t *testing.T) {
	assert.Nil(t, GetAuth(context.Background()))

	ctx := SetAuth(context.Background(), Claims{Subject: "uid", Email: "a@example.com"})
	got := GetAuth(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "uid", got.Subject)
}

func TestOIDC_Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	const issuer = FirebaseIssuerPrefix + "xceltrack-test"
	now := time.Now()

	verifier := oidc.NewVerifier(issuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}, &oidc.Config{
		ClientID: "xceltrack-test",
		Now:      func() time.Time { return now },
	})
	o := newOIDC(verifier)

	sign := func(claims libJWT.MapClaims) string {
		t.Helper()
		raw, err := libJWT.NewWithClaims(libJWT.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return raw
	}

	valid := sign(libJWT.MapClaims{
		"iss":   issuer,
		"aud":   "xceltrack-test",
		"sub":   "fb-uid-42",
		"email": "bob@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})

	clm, err := o.Verify(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, Claims{Subject: "fb-uid-42", Email: "bob@example.com"}, clm)

	expired := sign(libJWT.MapClaims{
		"iss": issuer,
		"aud": "xceltrack-test",
		"sub": "fb-uid-42",
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-time.Hour).Unix(),
	})
	_, err = o.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	wrongAud := sign(libJWT.MapClaims{
		"iss": issuer,
		"aud": "someone-else",
		"sub": "fb-uid-42",
		"exp": now.Add(time.Hour).Unix(),
	})
	_, err = o.Verify(context.Background(), wrongAud)
	assert.Error(t, err)

	_, err = o.Verify(context.Background(), "garbage")
	assert.Error(t, err)
}
