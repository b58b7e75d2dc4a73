package inbound

import (
	"context"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
	"github.com/xceltrack/xceltrack-api/internal/account/usecase"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
)

type uc interface {
	SyncUser(ctx context.Context, in usecase.SyncUserInput) (*usecase.SyncUserOutput, error)
	UserRole(ctx context.Context, uid string) (entity.Role, error)
	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	UserCreate(ctx context.Context, in usecase.UserCreateInput) (*entity.User, error)
	UserUpdate(ctx context.Context, in usecase.UserUpdateInput) (*entity.User, error)
	UserDelete(ctx context.Context, uid string) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/sync-user", end.SyncUser)
	r.GET("/api/user-role/:uid", end.UserRole)
	r.GET("/api/users", end.UserList)

	r.POST("/api/admin/users", end.UserCreate)
	r.PUT("/api/admin/users/:uid", end.UserUpdate)
	r.DELETE("/api/admin/users/:uid", end.UserDelete)
}
