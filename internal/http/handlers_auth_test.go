package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexfoods/opsboard/internal/domain/model"
)

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthLogin_RedirectsToProviderWithCookies(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/orders", nil)
	rec := env.do(req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://mock-idp/auth", rec.Header().Get("Location"))

	state := cookieByName(rec, "oauth_state")
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	require.NotNil(t, cookieByName(rec, "oauth_nonce"))

	redirect := cookieByName(rec, "post_login_redirect")
	require.NotNil(t, redirect)
	assert.Equal(t, "/orders", redirect.Value)
}

func TestAuthLogin_SanitizesAbsoluteRedirect(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example.com/", nil)
	rec := env.do(req)

	require.Equal(t, http.StatusFound, rec.Code)
	redirect := cookieByName(rec, "post_login_redirect")
	require.NotNil(t, redirect)
	assert.Equal(t, "/", redirect.Value)
}

func TestAuthCallback_CompletesLogin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=state-1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-1"})
	req.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nonce-1"})
	req.AddCookie(&http.Cookie{Name: "post_login_redirect", Value: "/orders"})
	rec := env.do(req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/orders", rec.Header().Get("Location"))

	session := cookieByName(rec, "session_id")
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Value)
	assert.Equal(t, 1, env.Sessions.Len())
}

func TestAuthCallback_RejectsStateMismatch(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-1"})
	req.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nonce-1"})
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.Sessions.Len())
}

func TestAuthCallback_MissingParams(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/callback?state=s", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/auth/callback?code=c", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthLogout_ClearsSessionAndPreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cookie := env.signIn(t, "maria", "maria@example.com")
	require.NoError(t, env.Prefs.SetActiveUnit(ctx, "maria", "u1"))
	require.NoError(t, env.Prefs.SetAdminView(ctx, "maria", "MANAGER"))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	rec := env.do(req)

	require.Equal(t, http.StatusFound, rec.Code)
	cleared := cookieByName(rec, "session_id")
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0, "session cookie expires immediately")
	assert.Equal(t, 0, env.Sessions.Len())

	unit, err := env.Prefs.ActiveUnit(ctx, "maria")
	require.NoError(t, err)
	assert.Empty(t, unit, "stored selections do not survive sign-out")
	view, err := env.Prefs.AdminView(ctx, "maria")
	require.NoError(t, err)
	assert.Empty(t, view)
}

func TestAuthStatus(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "maria", "maria@example.com")

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}

func TestAuthStatus_SlowStoreKeepsCookie(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "maria", "maria@example.com")
	env.Sessions.GetDelay = 5 * time.Second

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(cookie)
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
	assert.Nil(t, cookieByName(rec, "session_id"),
		"a store that missed its bound must not sign the user out")
}

func TestAuthStatus_UnknownSessionClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-gone"})
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
	cleared := cookieByName(rec, "session_id")
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestWithSession_SlowStoreTreatedAsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.grantRole("maria", "gerente", "n1", nil)
	env.Units.Units = []model.Unit{meUnit1}
	cookie := env.signIn(t, "maria", "maria@example.com")
	env.Sessions.GetDelay = 5 * time.Second

	start := time.Now()
	rec := env.do(apiRequest(http.MethodGet, "/api/me", cookie))
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusUnauthorized, rec.Code, "slow store degrades to anonymous")
	assert.Less(t, elapsed, 3*time.Second, "request settles near the lookup bound")
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
