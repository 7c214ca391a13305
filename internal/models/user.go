package models

// Role constants
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User represents a user authenticated via OIDC or a client certificate.
// Users are held in the session only.
type User struct {
	Sub      string `json:"sub"`      // OIDC subject identifier
	Username string `json:"username"` // Extracted from PKI CN e.g. "heatht" from "Heath Taylor (heatht)"
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Role     string `json:"role"` // viewer, editor, admin
}

// IsAdmin returns true if the user is an admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanEditCatalog returns true if the user may change catalog products.
func (u *User) CanEditCatalog() bool {
	return u.Role == RoleEditor || u.Role == RoleAdmin
}

// DisplayName returns the best available human-readable name.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	}
	return u.Sub
}
