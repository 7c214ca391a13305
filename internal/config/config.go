package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string `envconfig:"ENV" default:"development"` // "development", "production", etc.

	// Server
	ServerAddr string `envconfig:"SERVER_ADDR" default:":3000"`
	BaseURL    string `envconfig:"BASE_URL" default:"http://localhost:3000"`

	// Storage (both optional)
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`

	// TLS/mTLS
	TLSEnabled  bool   `envconfig:"TLS_ENABLED"`
	TLSCertFile string `envconfig:"TLS_CERT_FILE"`
	TLSKeyFile  string `envconfig:"TLS_KEY_FILE"`
	TLSCAFile   string `envconfig:"TLS_CA_FILE"` // CA for verifying client certs (mTLS)

	// Client cert via header (for ingress-terminated TLS)
	ClientCertHeader string `envconfig:"CLIENT_CERT_HEADER"` // Header name containing client cert CN, e.g. "X-Client-CN"

	// OIDC
	OIDCIssuer       string `envconfig:"OIDC_ISSUER"`
	OIDCClientID     string `envconfig:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `envconfig:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `envconfig:"OIDC_REDIRECT_URL" default:"http://localhost:3000/auth/callback"`

	// Users listed here (email or username) get the admin role and may edit the catalog.
	Admins []string `envconfig:"ADMINS"`

	// Session
	SessionSecret      string        `envconfig:"SESSION_SECRET" default:"change-me-in-production-min-32-chars"` // Used for signing cookies (min 32 chars)
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"2h"`

	// CORS
	CORSOrigins string `envconfig:"CORS_ORIGINS"` // Comma-separated allowed origins

	// Uploads
	MaxUploadMB    int `envconfig:"MAX_UPLOAD_MB" default:"20"`
	MaxUploadFiles int `envconfig:"MAX_UPLOAD_FILES" default:"10"`

	// Rules file with column aliases, extraction patterns and seed products
	RulesFile string `envconfig:"RULES_FILE" default:"rules.yaml"`

	// Background catalog refresh (only with DATABASE_URL)
	CatalogRefresh time.Duration `envconfig:"CATALOG_REFRESH" default:"5m"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT"` // "text" or "json"; defaults by environment

	// Site Branding
	SiteTitle   string `envconfig:"SITE_TITLE" default:"AdReport"`
	SiteTagline string `envconfig:"SITE_TAGLINE" default:"Ad performance reports for your team"`
	SiteFooter  string `envconfig:"SITE_FOOTER" default:"AdReport - advertising report analysis"`
	SiteLogoURL string `envconfig:"SITE_LOGO_URL"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.MaxUploadFiles <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_FILES must be positive, got %d", cfg.MaxUploadFiles)
	}
	return &cfg, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}

// IsAuthEnabled returns true if any authentication method is configured.
// Without one, the dashboard is open to anyone who can reach it.
func (c *Config) IsAuthEnabled() bool {
	return c.OIDCIssuer != "" || c.ClientCertHeader != ""
}

// HasDatabase returns true if the optional Postgres store is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// MaxUploadBytes returns the per-file upload limit in bytes.
func (c *Config) MaxUploadBytes() int {
	return c.MaxUploadMB * 1024 * 1024
}

// IsAdmin returns true if the email or username is listed in ADMINS.
func (c *Config) IsAdmin(email, username string) bool {
	for _, a := range c.Admins {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.EqualFold(a, email) || strings.EqualFold(a, username) {
			return true
		}
	}
	return false
}
