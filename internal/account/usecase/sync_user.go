package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

type SyncUserInput struct {
	UID   string `validate:"required,max=128"`
	Email string `validate:"required,email,max=255"`
	Name  string `validate:"required,max=255"`
}

type SyncUserOutput struct {
	User    entity.User
	Created bool
}

// SyncUser records a freshly signed-in identity. An existing row is returned
// as is, including when a concurrent call inserted it first.
func (s *Usecase) SyncUser(ctx context.Context, in SyncUserInput) (*SyncUserOutput, error) {
	ctx, span := s.startSpan(ctx, "SyncUser")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewValidation("Missing required fields", err)
	}

	existing, err := s.repoDB.GetUserByUID(ctx, in.UID)
	if err == nil {
		return &SyncUserOutput{User: *existing}, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user", "firebase_uid", in.UID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	created, err := s.repoDB.CreateUser(ctx, entity.User{
		ID:          s.uid.Generate(),
		FirebaseUID: in.UID,
		Email:       in.Email,
		Name:        in.Name,
		Role:        s.defaultRole,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if errors.Is(err, goerror.ErrConflict) {
		existing, err = s.repoDB.GetUserByUID(ctx, in.UID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get user after conflict", "firebase_uid", in.UID, "error", err)
			return nil, goerror.NewServer(err)
		}
		return &SyncUserOutput{User: *existing}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "firebase_uid", in.UID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user synced", "firebase_uid", in.UID, "user_id", created.ID)

	return &SyncUserOutput{User: *created, Created: true}, nil
}
