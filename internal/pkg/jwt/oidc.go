package jwt

import (
	"context"
	"errors"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// FirebaseIssuerPrefix prefixes the project ID to form Firebase's issuer URL.
const FirebaseIssuerPrefix = "https://securetoken.google.com/"

// OIDCConfig configures ID token verification against a discovery issuer.
type OIDCConfig struct {
	// Issuer is the discovery URL, e.g. FirebaseIssuerPrefix + projectID.
	Issuer string
	// Audience is the expected aud claim (the Firebase project ID).
	Audience string
}

// OIDC verifies identity-provider ID tokens.
type OIDC struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDC fetches the issuer's discovery document and key set location.
func NewOIDC(ctx context.Context, cfg OIDCConfig) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	return newOIDC(provider.Verifier(&oidc.Config{ClientID: cfg.Audience})), nil
}

func newOIDC(v *oidc.IDTokenVerifier) *OIDC {
	return &OIDC{verifier: v}
}

func (o *OIDC) Verify(ctx context.Context, token string) (Claims, error) {
	idToken, err := o.verifier.Verify(ctx, token)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return Claims{}, ErrTokenExpired
		}
		if strings.Contains(err.Error(), "malformed jwt") {
			return Claims{}, ErrInvalidToken
		}
		return Claims{}, err
	}

	var extra struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&extra); err != nil {
		return Claims{}, err
	}

	if idToken.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Subject: idToken.Subject, Email: extra.Email}, nil
}
