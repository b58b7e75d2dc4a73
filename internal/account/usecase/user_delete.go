package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

// UserDelete removes the login and then the profile. A login or row that is
// already gone is logged and skipped.
func (s *Usecase) UserDelete(ctx context.Context, uid string) error {
	ctx, span := s.startSpan(ctx, "UserDelete")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, entity.ObjectUsers, entity.ActionWrite); err != nil {
		return err
	}

	if uid == "" {
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}

	err := s.repoIDP.DeleteAccount(ctx, uid)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "idp account already deleted", "firebase_uid", uid)
	} else if err != nil {
		return idpError(ctx, "delete account", uid, err)
	}

	err = s.repoDB.DeleteUser(ctx, uid)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user deleted from idp but not found in database", "firebase_uid", uid)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete user", "firebase_uid", uid, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
