package domain

import (
	"context"
	"errors"
	"time"
)

// User represents a back-office operator. Users exist so every mutation
// carries an actor for audit attribution; authorization beyond the role
// check lives in the HTTP middleware.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role represents a user's access level.
type Role string

const (
	// RoleAdmin has full access, including deletions and treasury moves
	RoleAdmin Role = "admin"

	// RoleOperator can record bookings and payments but not delete them
	RoleOperator Role = "operator"

	// RoleViewer can only read
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanCreate checks if the role can record new entities.
func (r Role) CanCreate() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanDelete checks if the role can delete payments and expenses.
func (r Role) CanDelete() bool {
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

// ContextWithUser stores the authenticated user in the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}

// ActorFromContext returns the acting user's id, or "system" when the
// call did not come through an authenticated request.
func ActorFromContext(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok && user.ID != "" {
		return user.ID
	}
	return "system"
}
