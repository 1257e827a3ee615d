package httpx

import (
	"context"

	domainauth "github.com/codexfoods/opsboard/internal/domain/auth"
	"github.com/codexfoods/opsboard/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// snapshotKey carries the resolved access snapshot alongside the session.
type snapshotKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session from context and a boolean indicating presence.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// IdentityFromSession maps a session onto the identity shape used for access resolution.
func IdentityFromSession(s *domainauth.Session) domainauth.Identity {
	return domainauth.Identity{UserID: s.UserID, Email: s.Email, ExpiresAt: s.ExpiresAt}
}

// SetSnapshotInContext returns a child context carrying the resolved snapshot.
func SetSnapshotInContext(ctx context.Context, snap service.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// GetSnapshotFromContext returns the access snapshot and whether one was resolved.
func GetSnapshotFromContext(ctx context.Context) (service.Snapshot, bool) {
	if snap, ok := ctx.Value(snapshotKey{}).(service.Snapshot); ok {
		return snap, true
	}
	return service.Snapshot{}, false
}
