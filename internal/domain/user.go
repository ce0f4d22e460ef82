package domain

import (
	"context"
	"errors"
	"time"
)

// User represents a community member. Identity is established by the auth
// adapter; the ledger core only relies on ID and Role.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Role represents a user's access level
type Role string

const (
	// RoleMember can create contributions, send transfers and manage own links
	RoleMember Role = "member"

	// RoleModerator can additionally confirm, deny and delete contributions
	RoleModerator Role = "moderator"

	// RoleAdmin has full access, including user management
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RoleMember:    true,
	RoleModerator: true,
	RoleAdmin:     true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanModerate checks if the role can confirm or deny contributions
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// CanManageUsers checks if the role can create or delete users
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type userContextKey struct{}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}
