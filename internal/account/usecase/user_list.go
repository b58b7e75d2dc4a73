package usecase

import (
	"context"
	"log/slog"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goerror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserListInput struct {
	Page int
	Size int
}

type UserListOutput struct {
	Page  int
	Size  int
	Total int64
	Users []entity.User
}

// UserList returns users newest first.
func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, entity.ObjectUsers, entity.ActionRead); err != nil {
		return nil, err
	}

	if in.Size <= 0 || in.Size > maxPageSize {
		in.Size = defaultPageSize
	}
	in.Page = max(in.Page, 1)

	users, total, err := s.repoDB.ListUsers(ctx, in.Size, (in.Page-1)*in.Size)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{
		Page:  in.Page,
		Size:  in.Size,
		Total: total,
		Users: users,
	}, nil
}
