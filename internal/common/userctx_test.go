package common

import (
	"context"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}

	uc := &UserContext{UserID: "user-123", Email: "kim@example.com", Role: "user"}
	ctx = WithUserContext(ctx, uc)

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	if got.UserID != "user-123" {
		t.Errorf("Expected user-123, got %s", got.UserID)
	}
	if got.Email != "kim@example.com" {
		t.Errorf("Expected email, got %s", got.Email)
	}
}

func TestResolveUserID(t *testing.T) {
	ctx := context.Background()
	if got := ResolveUserID(ctx); got != "default" {
		t.Errorf("Expected default, got %s", got)
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "alice"})
	if got := ResolveUserID(ctx); got != "alice" {
		t.Errorf("Expected alice, got %s", got)
	}
}

func TestIsAdmin_RoleBased(t *testing.T) {
	ctx := context.Background()
	if IsAdmin(ctx) {
		t.Error("no user context must not be admin")
	}

	// an email containing "admin" grants nothing by itself
	ctx = WithUserContext(context.Background(), &UserContext{UserID: "u1", Email: "admin@example.com", Role: "user"})
	if IsAdmin(ctx) {
		t.Error("email must not grant admin")
	}

	ctx = WithUserContext(context.Background(), &UserContext{UserID: "u2", Role: RoleAdmin})
	if !IsAdmin(ctx) {
		t.Error("admin role should be admin")
	}
}
