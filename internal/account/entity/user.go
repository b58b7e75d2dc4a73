package entity

import (
	"errors"
	"time"
)

var ErrEmailRegistered = errors.New("email already registered with identity provider")

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the local profile of an identity-provider account, keyed by
// FirebaseUID.
type User struct {
	ID          int64
	FirebaseUID string
	Email       string
	Name        string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Account is what the identity provider receives when an admin creates or
// updates a login. Empty fields are left untouched on update.
type Account struct {
	UID      string
	Email    string
	Password string
	Name     string
}

// Authorization objects and actions checked by the enforcer.
const (
	ObjectUsers = "users"
	ActionRead  = "read"
	ActionWrite = "write"
)
