package common

import (
	"context"
)

// RoleAdmin is the role allowed to manage other users' quotas.
const RoleAdmin = "admin"

// UserContext identifies the caller of a request. It is resolved by the HTTP
// middleware from the bearer token and passed down explicitly through context.
type UserContext struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (uc *UserContext) IsAdmin() bool {
	return uc != nil && uc.Role == RoleAdmin
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUserID returns the UserID from context, or "default" when no user context is present.
// Used by services and storage operations that need a user scope.
func ResolveUserID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil && uc.UserID != "" {
		return uc.UserID
	}
	return "default"
}

// IsAdmin reports whether the context carries an admin caller.
func IsAdmin(ctx context.Context) bool {
	return UserContextFromContext(ctx).IsAdmin()
}
