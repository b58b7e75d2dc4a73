package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

const msgUserNotInDB = "User not found in database"

// UserUpdateInput leaves empty fields unchanged.
type UserUpdateInput struct {
	UID   string `validate:"required,max=128"`
	Email string `validate:"omitempty,email,max=255"`
	Name  string `validate:"max=255"`
	Role  string `validate:"omitempty,oneof=user admin"`
}

func (s *Usecase) UserUpdate(ctx context.Context, in UserUpdateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserUpdate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, entity.ObjectUsers, entity.ActionWrite); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewValidation("Invalid user data", err)
	}

	if _, err := s.repoDB.GetUserByUID(ctx, in.UID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusinessCause(err, msgUserNotInDB, goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo get user", "firebase_uid", in.UID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if in.Email != "" || in.Name != "" {
		if err := s.repoIDP.UpdateAccount(ctx, entity.Account{
			UID:   in.UID,
			Email: in.Email,
			Name:  in.Name,
		}); err != nil {
			return nil, idpError(ctx, "update account", in.UID, err)
		}
	}

	user, err := s.repoDB.UpdateUser(ctx, entity.User{
		FirebaseUID: in.UID,
		Email:       in.Email,
		Name:        in.Name,
		Role:        entity.Role(in.Role),
		UpdatedAt:   s.clock.Now(),
	})
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusinessCause(err, msgUserNotInDB, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user", "firebase_uid", in.UID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}
