package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/codexfoods/opsboard/internal/domain/auth"
	"github.com/codexfoods/opsboard/internal/domain/model"
	mocks "github.com/codexfoods/opsboard/internal/mocks/access"
	"github.com/codexfoods/opsboard/internal/service"
)

// testEnv wires the real services over in-memory doubles so router tests
// exercise the full middleware and guard chain.
type testEnv struct {
	Handler  http.Handler
	Sessions *mocks.MemorySessionStore
	Prefs    *mocks.MemoryPreferenceStore
	Roles    *mocks.StubRoleAssignments
	Units    *mocks.StubUnitDirectory
	Auth     *service.AuthService
	Access   *service.AccessService

	superAdmins map[string]bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		Sessions:    mocks.NewMemorySessionStore(),
		Prefs:       mocks.NewMemoryPreferenceStore(),
		Roles:       &mocks.StubRoleAssignments{},
		Units:       &mocks.StubUnitDirectory{},
		superAdmins: make(map[string]bool),
	}
	env.Auth = service.NewAuthService(service.AuthServiceOptions{
		Provider:      mocks.NewMockAuthProvider(),
		Sessions:      env.Sessions,
		Prefs:         env.Prefs,
		LookupTimeout: time.Second,
	})
	env.Access = service.NewAccessService(service.AccessServiceOptions{
		Roles:          env.Roles,
		Units:          env.Units,
		Prefs:          env.Prefs,
		IsSuperAdmin:   func(email string) bool { return env.superAdmins[email] },
		ResolveTimeout: time.Second,
	})
	env.Handler = NewRouter(RouterServices{
		Auth:          env.Auth,
		Access:        env.Access,
		CookieDomain:  "",
		DashboardPath: "/dashboard",
	})
	return env
}

func (env *testEnv) markSuperAdmin(email string) {
	env.superAdmins[email] = true
}

// signIn stores a session directly and returns its cookie.
func (env *testEnv) signIn(t *testing.T, userID, email string) *http.Cookie {
	t.Helper()
	sess := domainauth.Session{
		ID:        "sess-" + userID,
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, env.Sessions.Save(context.Background(), sess))
	return &http.Cookie{Name: "session_id", Value: sess.ID}
}

func (env *testEnv) grantRole(userID, role, networkID string, unit *model.Unit) {
	a := model.RoleAssignment{UserID: userID, Role: role, NetworkID: networkID}
	if unit != nil {
		a.UnitID = unit.ID
		a.Unit = unit
	}
	env.Roles.Rows = append(env.Roles.Rows, a)
}

// sessionForTest builds a bare session for direct middleware tests.
func sessionForTest(userID string) *domainauth.Session {
	return &domainauth.Session{
		ID:        "sess-" + userID,
		UserID:    userID,
		Email:     userID + "@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// do performs a request against the router and returns the recorder.
func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.Handler.ServeHTTP(rec, req)
	return rec
}
