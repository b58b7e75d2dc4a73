package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/jwt"
	"github.com/xceltrack/xceltrack-api/internal/pkg/uid"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetUserByUID(ctx context.Context, uid string) (*entity.User, error)
	CreateUser(ctx context.Context, u entity.User) (*entity.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]entity.User, int64, error)
	UpdateUser(ctx context.Context, u entity.User) (*entity.User, error)
	DeleteUser(ctx context.Context, uid string) error
}

type repoIDP interface {
	CreateAccount(ctx context.Context, acc entity.Account) (string, error)
	UpdateAccount(ctx context.Context, acc entity.Account) error
	DeleteAccount(ctx context.Context, uid string) error
}

// enforcer is satisfied by *casbin.Enforcer.
type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB      repoDB
	repoIDP     repoIDP
	enforcer    enforcer
	validator   validator.Validator
	uid         uid.NumberID
	clock       clock.Clocker
	ins         instrument.Instrumentation
	defaultRole entity.Role
}

type Dependency struct {
	RepoDB     repoDB
	RepoIDP    repoIDP
	Enforcer   enforcer
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	role := entity.Role(dep.Config.GetString("modules.account.default_role"))
	if !role.Valid() {
		role = entity.RoleUser
	}

	return &Usecase{
		repoDB:      dep.RepoDB,
		repoIDP:     dep.RepoIDP,
		enforcer:    dep.Enforcer,
		validator:   dep.Validator,
		uid:         dep.UID,
		clock:       dep.Clock,
		ins:         dep.Instrument,
		defaultRole: role,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name)
}

// authenticatedAndAuthorized resolves the caller's role from the users table
// and checks it against the policy for obj and act.
func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*entity.User, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	caller, err := s.repoDB.GetUserByUID(ctx, clm.Subject)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "authenticated account has no user row", "firebase_uid", clm.Subject)
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get caller", "firebase_uid", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	ok, err := s.enforcer.Enforce(string(caller.Role), obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "firebase_uid", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return caller, nil
}

// idpError translates identity provider failures into client-facing errors.
func idpError(ctx context.Context, op, uid string, err error) error {
	switch {
	case errors.Is(err, entity.ErrEmailRegistered):
		return goerror.NewBusinessCause(err, "Email already registered", goerror.CodeConflict)
	case errors.Is(err, goerror.ErrNotFound):
		return goerror.NewBusinessCause(err, "User not found", goerror.CodeNotFound)
	default:
		slog.ErrorContext(ctx, "failed to idp "+op, "firebase_uid", uid, "error", err)
		return goerror.NewServer(err)
	}
}
