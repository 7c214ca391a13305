package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"adreport/internal/config"
	"adreport/internal/models"
)

// Session keys holding the signed-in user.
const (
	SessionUserSub      = "user_sub"
	SessionUserEmail    = "user_email"
	SessionUserName     = "user_name"
	SessionUserUsername = "user_username"
	SessionUserPicture  = "user_picture"
)

// LocalsUser is the fiber.Ctx locals key for the current *models.User.
const LocalsUser = "user"

// AuthMiddleware resolves the current user from a client certificate,
// the session, or, when no authentication is configured, an anonymous admin.
type AuthMiddleware struct {
	cfg *config.Config
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// RequireAuth ensures the user is authenticated. Pages redirect to the
// login flow; API calls get a 401.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user := m.resolve(c)
	if user == nil {
		return unauthorized(c)
	}
	c.Locals(LocalsUser, user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := m.resolve(c); user != nil {
		c.Locals(LocalsUser, user)
	}
	return c.Next()
}

// RequireEditor allows users who may change the catalog. Use after RequireAuth.
func (m *AuthMiddleware) RequireEditor(c fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return unauthorized(c)
	}
	if !user.CanEditCatalog() {
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to edit the catalog")
	}
	return c.Next()
}

// RequireAdmin allows admins only. Use after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return unauthorized(c)
	}
	if !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}
	return c.Next()
}

// CurrentUser returns the user stored by the auth middleware, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalsUser).(*models.User)
	return user
}

// SetSessionUser stores the signed-in user in the session.
// Only strings are stored so the session codec needs no type registration.
func SetSessionUser(sess *session.Middleware, u *models.User) {
	sess.Set(SessionUserSub, u.Sub)
	sess.Set(SessionUserEmail, u.Email)
	sess.Set(SessionUserName, u.Name)
	sess.Set(SessionUserUsername, u.Username)
	sess.Set(SessionUserPicture, u.Picture)
}

func (m *AuthMiddleware) resolve(c fiber.Ctx) *models.User {
	if u := m.fromClientCert(c); u != nil {
		return u
	}
	if u := m.fromSession(c); u != nil {
		return u
	}
	if !m.cfg.IsAuthEnabled() {
		return &models.User{Sub: "anonymous", Name: "Anonymous", Role: models.RoleAdmin}
	}
	return nil
}

// fromClientCert reads the CN from the configured ingress header or, with
// mTLS terminated here, from the verified peer certificate.
func (m *AuthMiddleware) fromClientCert(c fiber.Ctx) *models.User {
	var cn string
	if m.cfg.ClientCertHeader != "" {
		cn = strings.TrimSpace(c.Get(m.cfg.ClientCertHeader))
	}
	if cn == "" && m.cfg.IsMTLSEnabled() {
		if state := c.RequestCtx().TLSConnectionState(); state != nil && len(state.PeerCertificates) > 0 {
			cn = strings.TrimSpace(state.PeerCertificates[0].Subject.CommonName)
		}
	}
	if cn == "" {
		return nil
	}

	username := extractUsernameFromCN(cn)
	if username == "" {
		username = cn
	}
	u := &models.User{Sub: "cert:" + username, Username: username, Name: cn}
	u.Role = m.roleFor(u)
	return u
}

func (m *AuthMiddleware) fromSession(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	sub, _ := sess.Get(SessionUserSub).(string)
	if sub == "" {
		return nil
	}
	u := &models.User{Sub: sub}
	u.Email, _ = sess.Get(SessionUserEmail).(string)
	u.Name, _ = sess.Get(SessionUserName).(string)
	u.Username, _ = sess.Get(SessionUserUsername).(string)
	u.Picture, _ = sess.Get(SessionUserPicture).(string)
	u.Role = m.roleFor(u)
	return u
}

func (m *AuthMiddleware) roleFor(u *models.User) string {
	if m.cfg.IsAdmin(u.Email, u.Username) {
		return models.RoleAdmin
	}
	return models.RoleEditor
}

func unauthorized(c fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "authentication required",
		})
	}
	return c.Redirect().To("/auth/login?next=" + url.QueryEscape(c.OriginalURL()))
}

// extractUsernameFromCN returns the username in a CN of the form
// "Full Name (username)". Returns "" if the CN doesn't end in one
// well-formed parenthesized group.
func extractUsernameFromCN(cn string) string {
	cn = strings.TrimSpace(cn)
	if !strings.HasSuffix(cn, ")") {
		return ""
	}
	open := strings.LastIndex(cn, "(")
	if open < 0 {
		return ""
	}
	inner := cn[open+1 : len(cn)-1]
	if strings.ContainsAny(inner, "()") {
		return ""
	}
	return strings.TrimSpace(inner)
}
