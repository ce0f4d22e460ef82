package domain

import (
	"context"
	"testing"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role        Role
		valid       bool
		moderate    bool
		manageUsers bool
	}{
		{RoleMember, true, false, false},
		{RoleModerator, true, true, false},
		{RoleAdmin, true, true, true},
		{Role("superuser"), false, false, false},
	}

	for _, tt := range tests {
		if got := tt.role.IsValid(); got != tt.valid {
			t.Errorf("%s.IsValid() = %v, want %v", tt.role, got, tt.valid)
		}
		if got := tt.role.CanModerate(); got != tt.moderate {
			t.Errorf("%s.CanModerate() = %v, want %v", tt.role, got, tt.moderate)
		}
		if got := tt.role.CanManageUsers(); got != tt.manageUsers {
			t.Errorf("%s.CanManageUsers() = %v, want %v", tt.role, got, tt.manageUsers)
		}
	}
}

func TestUserContextRoundTrip(t *testing.T) {
	user := &User{ID: "user-1", Email: "user@example.com", Role: RoleMember}

	ctx := ContextWithUser(context.Background(), user)

	got, ok := UserFromContext(ctx)
	if !ok || got.ID != user.ID {
		t.Fatalf("expected user from context, got %+v ok=%v", got, ok)
	}

	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatalf("expected no user in empty context")
	}
}
