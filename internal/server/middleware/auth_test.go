package middleware

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"bearer token", "Bearer abc123", "abc123", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"empty token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			if ok != tt.ok {
				t.Fatalf("bearerToken(%q) ok = %v, expected %v", tt.header, ok, tt.ok)
			}
			if ok && token != tt.token {
				t.Errorf("bearerToken(%q) = %q, expected %q", tt.header, token, tt.token)
			}
		})
	}
}

func TestUserFromClaims(t *testing.T) {
	user, err := userFromClaims(jwt.MapClaims{
		"id":          float64(42),
		"role":        "user",
		"permissions": []any{"graph.view:all", "graph.update"},
	})
	if err != nil {
		t.Fatalf("userFromClaims failed: %v", err)
	}
	if user.UserID != 42 {
		t.Errorf("expected user id 42, got %d", user.UserID)
	}
	if len(user.Permissions) != 2 || user.Permissions[0] != "graph.view:all" {
		t.Errorf("unexpected permissions: %v", user.Permissions)
	}
}

func TestUserFromClaimsAdminDefaultPermissions(t *testing.T) {
	user, err := userFromClaims(jwt.MapClaims{"id": float64(1), "role": "admin"})
	if err != nil {
		t.Fatalf("userFromClaims failed: %v", err)
	}
	if len(user.Permissions) != len(allPermissions) {
		t.Errorf("admin without explicit permissions should hold all, got %v", user.Permissions)
	}
}

func TestUserFromClaimsRejectsMissingID(t *testing.T) {
	if _, err := userFromClaims(jwt.MapClaims{"role": "user"}); err == nil {
		t.Fatalf("expected an error for claims without a numeric id")
	}
}
