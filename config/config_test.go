package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	require.NoError(t, m.UnmarshalText([]byte("OAuth")))
	assert.Equal(t, AuthModeOAuth, m)
	require.NoError(t, m.UnmarshalText([]byte("mock")))
	assert.Equal(t, AuthModeMock, m)
	assert.Error(t, m.UnmarshalText([]byte("saml")))
}

func TestAuthConfig_SanitizeTimeouts(t *testing.T) {
	a := AuthConfig{SessionLookupTimeout: -1, PermissionsTimeout: 0}
	a.Sanitize()
	assert.Equal(t, 5*time.Second, a.SessionLookupTimeout)
	assert.Equal(t, 3*time.Second, a.PermissionsTimeout)

	a = AuthConfig{SessionLookupTimeout: time.Second, PermissionsTimeout: 2 * time.Second}
	a.Sanitize()
	assert.Equal(t, time.Second, a.SessionLookupTimeout)
	assert.Equal(t, 2*time.Second, a.PermissionsTimeout)
}

func TestAuthConfig_IsSuperAdminEmail(t *testing.T) {
	a := AuthConfig{SuperAdminEmails: []string{" Admin@Codex.app ", "", "ops@example.com"}}
	a.Sanitize()
	assert.True(t, a.IsSuperAdminEmail("admin@codex.app"))
	assert.True(t, a.IsSuperAdminEmail("ADMIN@CODEX.APP"))
	assert.True(t, a.IsSuperAdminEmail("ops@example.com"))
	assert.False(t, a.IsSuperAdminEmail("user@codex.app"))
	assert.False(t, a.IsSuperAdminEmail(""))
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	c := AppConfig{}
	c.Sanitize()
	assert.True(t, c.IsDev)

	t.Setenv("NODE_ENV", "production")
	c = AppConfig{}
	c.Sanitize()
	assert.False(t, c.IsDev)
}
