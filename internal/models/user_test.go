package models

import "testing"

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{"admin user", RoleAdmin, true},
		{"editor", RoleEditor, false},
		{"viewer", RoleViewer, false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if got := user.IsAdmin(); got != tt.expected {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUser_CanEditCatalog(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{"admin user", RoleAdmin, true},
		{"editor", RoleEditor, true},
		{"viewer", RoleViewer, false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if got := user.CanEditCatalog(); got != tt.expected {
				t.Errorf("CanEditCatalog() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"name wins", User{Name: "Heath Taylor", Username: "heatht", Email: "h@example.com"}, "Heath Taylor"},
		{"username", User{Username: "heatht", Email: "h@example.com"}, "heatht"},
		{"email", User{Email: "h@example.com", Sub: "abc"}, "h@example.com"},
		{"subject", User{Sub: "abc"}, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}
