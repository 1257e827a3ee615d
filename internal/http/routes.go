package httpx

import (
	"log/slog"
	"net/http"

	"github.com/codexfoods/opsboard/internal/domain/access"
	"github.com/codexfoods/opsboard/internal/observability/statsd"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	Access       AccessServiceInterface
	CookieDomain string
	// DashboardPath receives browser requests denied by a permission guard.
	DashboardPath string
	Logger        *slog.Logger
	// Metrics receives request counters and latencies when set.
	Metrics statsd.Sink
}

// NewRouter creates and configures the HTTP router. Every route below
// /api/ is guarded by the permission it requires; auth and health routes
// are public.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	meHandlers := &MeHandlers{Access: services.Access}
	guardCfg := GuardConfig{DashboardPath: services.DashboardPath}

	mux.HandleFunc("GET /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	requireAuth := RequireAuth(guardCfg)
	mux.Handle("GET /api/me", requireAuth(http.HandlerFunc(meHandlers.Me)))
	mux.Handle("PUT /api/me/active-unit", requireAuth(http.HandlerFunc(meHandlers.SetActiveUnit)))
	mux.Handle("PUT /api/me/admin-view", requireAuth(http.HandlerFunc(meHandlers.SetAdminView)))

	registerGuardedPages(mux, guardCfg)

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	if services.Metrics != nil {
		// Innermost so the matched route pattern is available for tagging.
		handler = Metrics(services.Metrics)(handler)
	}
	handler = WithAccess(services.Access)(handler)
	handler = WithSession(services.Auth)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// registerGuardedPages wires the permission-guarded page routes. The pages
// themselves are rendered by the frontend; the server contributes the guard
// decision (serve, redirect, retry, or deny) and a minimal payload.
func registerGuardedPages(mux *http.ServeMux, cfg GuardConfig) {
	pages := []struct {
		path string
		perm access.Permission
	}{
		{"/dashboard", access.PermViewDashboard},
		{"/stock", access.PermViewStock},
		{"/orders", access.PermViewOrders},
		{"/checklists", access.PermViewChecklists},
		{"/checklist-review", access.PermViewChecklistReview},
		{"/training", access.PermViewTraining},
		{"/products", access.PermViewProducts},
		{"/units", access.PermViewUnits},
		{"/users", access.PermViewUsers},
		{"/settings", access.PermManageSettings},
	}
	for _, p := range pages {
		mux.Handle("GET "+p.path, Protect(p.perm, cfg)(http.HandlerFunc(pageOK(p.path))))
	}
}

// pageOK acknowledges a granted page route. A real frontend serves the page
// body; the JSON acknowledgement keeps the guard chain testable end to end.
func pageOK(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"page": path})
	}
}
