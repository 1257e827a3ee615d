package httpx

import (
	"errors"
	"net/http"

	"github.com/codexfoods/opsboard/internal/domain/access"
)

// GuardConfig holds configuration for route guards.
type GuardConfig struct {
	// DashboardPath is where browser requests land when they lack the
	// required permission for a page.
	DashboardPath string
}

func (cfg GuardConfig) dashboardPath() string {
	if cfg.DashboardPath == "" {
		return "/dashboard"
	}
	return cfg.DashboardPath
}

// Protect returns a middleware enforcing a permission on a route. The checks
// run in a strict order so an earlier condition always masks a later one:
//
//  1. an authenticated session whose access snapshot has not settled is asked
//     to retry (503), never silently denied or allowed
//  2. an anonymous request is redirected to login (browser) or told 401 (API)
//  3. a switchable identity whose stored view could not be read is asked to
//     retry (503)
//  4. a settled snapshot lacking the permission is sent to the dashboard
//     (browser) or told 403 (API)
//
// An empty permission skips check 4 and only requires authentication.
func Protect(perm access.Permission, cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, authenticated := GetSessionFromContext(r.Context())
			snap, resolved := GetSnapshotFromContext(r.Context())

			if authenticated && (!resolved || !snap.Settled()) {
				retryLater(w)
				return
			}

			if !authenticated || session == nil {
				if isBrowserRequest(r) {
					redirectToLogin(w, r)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}

			if snap.ViewPending {
				retryLater(w)
				return
			}

			if perm != "" && !snap.HasPermission(perm) {
				if isBrowserRequest(r) {
					http.Redirect(w, r, cfg.dashboardPath(), http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth is Protect without a permission: authentication only.
func RequireAuth(cfg GuardConfig) func(http.Handler) http.Handler {
	return Protect("", cfg)
}

// retryLater tells the client the access picture is still settling.
func retryLater(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	WriteError(w, ErrorParams{
		Code:    http.StatusServiceUnavailable,
		ErrCode: "resolution_pending",
		Err:     errors.New("access resolution pending, retry shortly"),
	})
}
