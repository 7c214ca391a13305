package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"adreport/internal/config"
)

func TestExtractUsernameFromCN(t *testing.T) {
	tests := []struct {
		name     string
		cn       string
		expected string
	}{
		{
			name:     "standard format with name and username",
			cn:       "Heath Taylor (heatht)",
			expected: "heatht",
		},
		{
			name:     "username only in parentheses",
			cn:       "(admin)",
			expected: "admin",
		},
		{
			name:     "name with middle initial",
			cn:       "John Q. Public (jpublic)",
			expected: "jpublic",
		},
		{
			name:     "extra spaces around username",
			cn:       "Test User ( testuser )",
			expected: "testuser",
		},
		{
			name:     "no parentheses",
			cn:       "Just A Name",
			expected: "",
		},
		{
			name:     "empty string",
			cn:       "",
			expected: "",
		},
		{
			name:     "parentheses in middle not at end",
			cn:       "Name (part) More",
			expected: "",
		},
		{
			name:     "multiple parentheses takes last",
			cn:       "Name (first) (second)",
			expected: "second",
		},
		{
			name:     "nested parentheses returns empty (invalid format)",
			cn:       "Name ((nested))",
			expected: "",
		},
		{
			name:     "special characters in username",
			cn:       "User Name (user-name_123)",
			expected: "user-name_123",
		},
		{
			name:     "unicode name",
			cn:       "José García (jgarcia)",
			expected: "jgarcia",
		},
		{
			name:     "trailing whitespace after parentheses",
			cn:       "Test User (testuser)   ",
			expected: "testuser",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractUsernameFromCN(tt.cn)
			if got != tt.expected {
				t.Errorf("extractUsernameFromCN(%q) = %q, want %q", tt.cn, got, tt.expected)
			}
		})
	}
}

func newTestApp(cfg *config.Config) *fiber.App {
	m := NewAuthMiddleware(cfg)
	app := fiber.New()
	sessionMiddleware, _ := session.NewWithStore()
	app.Use(sessionMiddleware)

	whoami := func(c fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return c.SendString("nobody")
		}
		return c.SendString(u.Username + "|" + u.Role)
	}
	app.Get("/page", m.RequireAuth, whoami)
	app.Get("/api/v1/page", m.RequireAuth, whoami)
	app.Get("/optional", m.OptionalAuth, whoami)
	app.Post("/edit", m.RequireAuth, m.RequireEditor, whoami)
	app.Delete("/admin", m.RequireAuth, m.RequireAdmin, whoami)
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(b)
}

func TestAuthDisabledGrantsAnonymousAdmin(t *testing.T) {
	app := newTestApp(&config.Config{})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/admin", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := body(t, resp); got != "|admin" {
		t.Errorf("expected anonymous admin, got %q", got)
	}
}

func TestRequireAuthWithoutUser(t *testing.T) {
	app := newTestApp(&config.Config{OIDCIssuer: "https://issuer.example"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/page?tab=daily", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther && resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/auth/login?next=") {
		t.Errorf("unexpected redirect target %q", loc)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/page", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for API path, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/optional", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got := body(t, resp); got != "nobody" {
		t.Errorf("expected no user on optional route, got %q", got)
	}
}

func TestClientCertHeaderRoles(t *testing.T) {
	cfg := &config.Config{ClientCertHeader: "X-Client-CN", Admins: []string{"boss"}}
	app := newTestApp(cfg)

	tests := []struct {
		name   string
		method string
		path   string
		cn     string
		status int
		body   string
	}{
		{"editor may edit", http.MethodPost, "/edit", "Heath Taylor (heatht)", http.StatusOK, "heatht|editor"},
		{"editor may not delete", http.MethodDelete, "/admin", "Heath Taylor (heatht)", http.StatusForbidden, ""},
		{"admin may delete", http.MethodDelete, "/admin", "The Boss (boss)", http.StatusOK, "boss|admin"},
		{"plain CN is the username", http.MethodGet, "/page", "svc-report", http.StatusOK, "svc-report|editor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("X-Client-CN", tt.cn)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.body != "" {
				if got := body(t, resp); got != tt.body {
					t.Errorf("expected %q, got %q", tt.body, got)
				}
			}
		})
	}
}
