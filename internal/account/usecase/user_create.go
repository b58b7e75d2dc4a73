package usecase

import (
	"context"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

type UserCreateInput struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,password"`
	Name     string `validate:"max=255"`
	Role     string `validate:"omitempty,oneof=user admin"`
}

// UserCreate registers the login with the identity provider first and then
// stores the profile. When the insert fails the new login is removed again.
func (s *Usecase) UserCreate(ctx context.Context, in UserCreateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserCreate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, entity.ObjectUsers, entity.ActionWrite); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewValidation("Invalid user data", err)
	}

	role := entity.Role(in.Role)
	if role == "" {
		role = entity.RoleUser
	}

	fbUID, err := s.repoIDP.CreateAccount(ctx, entity.Account{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
	})
	if err != nil {
		return nil, idpError(ctx, "create account", "", err)
	}

	now := s.clock.Now()
	user, err := s.repoDB.CreateUser(ctx, entity.User{
		ID:          s.uid.Generate(),
		FirebaseUID: fbUID,
		Email:       in.Email,
		Name:        in.Name,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "firebase_uid", fbUID, "error", err)
		if derr := s.repoIDP.DeleteAccount(ctx, fbUID); derr != nil {
			slog.ErrorContext(ctx, "failed to roll back idp account", "firebase_uid", fbUID, "error", derr)
		}
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user created", "firebase_uid", fbUID, "user_id", user.ID, "role", user.Role)

	return user, nil
}
