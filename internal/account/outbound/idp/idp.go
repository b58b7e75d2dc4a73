// Package idp manages logins in the Firebase identity provider through the
// Identity Toolkit relying party API.
package idp

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

var ErrEmptyUID = errors.New("idp: provider returned an empty uid")

type IDP struct {
	svc *identitytoolkit.RelyingpartyService
	ins instrument.Instrumentation
}

// New builds the client. opts carry credentials or, for emulators and
// tests, option.WithEndpoint plus option.WithoutAuthentication.
func New(ctx context.Context, ins instrument.Instrumentation, opts ...option.ClientOption) (*IDP, error) {
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &IDP{svc: svc.Relyingparty, ins: ins}, nil
}

func (s *IDP) CreateAccount(ctx context.Context, acc entity.Account) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	resp, err := s.svc.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       acc.Email,
		Password:    acc.Password,
		DisplayName: acc.Name,
	}).Context(ctx).Do()
	if err != nil {
		return "", mapError(err)
	}

	if resp.LocalId == "" {
		return "", ErrEmptyUID
	}

	return resp.LocalId, nil
}

// UpdateAccount sets email and display name. Empty fields are not sent.
func (s *IDP) UpdateAccount(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAccount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.svc.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		LocalId:     acc.UID,
		Email:       acc.Email,
		DisplayName: acc.Name,
	}).Context(ctx).Do()

	return mapError(err)
}

func (s *IDP) DeleteAccount(ctx context.Context, uid string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteAccount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.svc.DeleteAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDeleteAccountRequest{
		LocalId: uid,
	}).Context(ctx).Do()

	return mapError(err)
}

// mapError turns provider error codes such as "EMAIL_EXISTS" or
// "USER_NOT_FOUND : ..." into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch {
	case strings.HasPrefix(gerr.Message, "EMAIL_EXISTS"):
		return entity.ErrEmailRegistered
	case strings.HasPrefix(gerr.Message, "USER_NOT_FOUND"), gerr.Code == http.StatusNotFound:
		return goerror.ErrNotFound
	default:
		return err
	}
}

func (s *IDP) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.outbound.idp").Start(ctx, name)
}

func (s *IDP) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
