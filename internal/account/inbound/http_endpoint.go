package inbound

import (
	"github.com/samber/lo"
	"github.com/xceltrack/xceltrack-api/internal/account/usecase"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// SyncUser creates the local profile after a client sign-in.
func (h *HTTPEndpoint) SyncUser(r *router.Request) (any, error) {
	var req SyncUserRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.SyncUser(r.Context(), usecase.SyncUserInput{
		UID:   req.UID,
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		return nil, err
	}

	return SyncUserResponse{UserResponse: toUserResponse(out.User, 0), created: out.Created}, nil
}

func (h *HTTPEndpoint) UserRole(r *router.Request) (any, error) {
	role, err := h.uc.UserRole(r.Context(), r.GetParam("uid"))
	if err != nil {
		return nil, err
	}

	return UserRoleResponse{Role: string(role)}, nil
}

func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt("page", 1)
	if err != nil {
		return nil, err
	}

	size, err := r.GetQueryInt("size", 0)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.UserList(r.Context(), usecase.UserListInput{Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	return UserListResponse{
		Page:  out.Page,
		Size:  out.Size,
		Total: out.Total,
		Users: lo.Map(out.Users, toUserResponse),
	}, nil
}

func (h *HTTPEndpoint) UserCreate(r *router.Request) (any, error) {
	var req UserCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.UserCreate(r.Context(), usecase.UserCreateInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return nil, err
	}

	return UserCreateResponse{UserResponse: toUserResponse(*user, 0)}, nil
}

func (h *HTTPEndpoint) UserUpdate(r *router.Request) (any, error) {
	var req UserUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.UserUpdate(r.Context(), usecase.UserUpdateInput{
		UID:   r.GetParam("uid"),
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		return nil, err
	}

	return UserUpdateResponse{UserResponse: toUserResponse(*user, 0)}, nil
}

func (h *HTTPEndpoint) UserDelete(r *router.Request) (any, error) {
	if err := h.uc.UserDelete(r.Context(), r.GetParam("uid")); err != nil {
		return nil, err
	}

	return UserDeleteResponse{}, nil
}
