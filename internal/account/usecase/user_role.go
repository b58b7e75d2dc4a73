package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

func (s *Usecase) UserRole(ctx context.Context, uid string) (entity.Role, error) {
	ctx, span := s.startSpan(ctx, "UserRole")
	defer span.End()

	if uid == "" {
		return "", goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}

	user, err := s.repoDB.GetUserByUID(ctx, uid)
	if errors.Is(err, goerror.ErrNotFound) {
		return "", goerror.NewBusinessCause(err, "User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "firebase_uid", uid, "error", err)
		return "", goerror.NewServer(err)
	}

	return user.Role, nil
}
