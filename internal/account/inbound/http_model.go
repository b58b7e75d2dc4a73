package inbound

import (
	"net/http"
	"time"

	"github.com/xceltrack/xceltrack-api/internal/account/entity"
)

type UserResponse struct {
	ID          int64     `json:"id,string"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserResponse(u entity.User, _ int) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirebaseUID: u.FirebaseUID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type SyncUserRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SyncUserResponse struct {
	UserResponse

	created bool
}

func (r SyncUserResponse) Message() string {
	if r.created {
		return "User synced successfully"
	}
	return "User already synced"
}

func (r SyncUserResponse) StatusCode() int {
	if r.created {
		return http.StatusCreated
	}
	return http.StatusOK
}

type UserRoleResponse struct {
	Role string `json:"role"`
}

type UserListResponse struct {
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Total int64          `json:"total"`
	Users []UserResponse `json:"users"`
}

func (UserListResponse) Message() string {
	return "Users retrieved successfully"
}

type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type UserCreateResponse struct {
	UserResponse
}

func (UserCreateResponse) Message() string {
	return "User created successfully"
}

func (UserCreateResponse) StatusCode() int {
	return http.StatusCreated
}

type UserUpdateRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type UserUpdateResponse struct {
	UserResponse
}

func (UserUpdateResponse) Message() string {
	return "User updated successfully"
}

type UserDeleteResponse struct{}

func (UserDeleteResponse) Message() string {
	return "User deleted successfully"
}
