package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"opsboard"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"opsboard"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string `env:"USER_ID" envDefault:"dev-user"`
	Email  string `env:"EMAIL"   envDefault:"dev@example.com"`
}

// AuthConfig groups authentication and access-resolution configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SuperAdminEmails is the fixed allow-list of emails granted the
	// super_admin role out-of-band, independent of role assignment rows.
	// A bootstrap mechanism for initial deployments.
	SuperAdminEmails []string `env:"AUTH_SUPER_ADMIN_EMAILS" envDefault:"admin@codex.app" envSeparator:";"`

	// SessionLookupTimeout bounds the wait on the session store before the
	// request is treated as anonymous.
	SessionLookupTimeout time.Duration `env:"AUTH_SESSION_LOOKUP_TIMEOUT" envDefault:"5s"`

	// PermissionsTimeout bounds one whole access-resolution pass, covering
	// the role and unit fetches it issues; on expiry the snapshot settles
	// degraded at least privilege.
	PermissionsTimeout time.Duration `env:"AUTH_PERMISSIONS_TIMEOUT" envDefault:"3s"`
}

// Default bounds applied by Sanitize when env values are zero or negative.
const (
	defaultSessionLookupTimeout = 5 * time.Second
	defaultPermissionsTimeout   = 3 * time.Second
)

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionLookupTimeout <= 0 {
		a.SessionLookupTimeout = defaultSessionLookupTimeout
	}
	if a.PermissionsTimeout <= 0 {
		a.PermissionsTimeout = defaultPermissionsTimeout
	}

	emails := a.SuperAdminEmails[:0]
	for _, e := range a.SuperAdminEmails {
		if trimmed := strings.TrimSpace(e); trimmed != "" {
			emails = append(emails, strings.ToLower(trimmed))
		}
	}
	a.SuperAdminEmails = emails
}

// IsSuperAdminEmail reports whether the email is in the super-admin allow-list.
// Comparison is case-insensitive.
func (a *AuthConfig) IsSuperAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, e := range a.SuperAdminEmails {
		if e == needle {
			return true
		}
	}
	return false
}
