package access

// Package access contains simple hand-written test doubles for auth and
// access ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainaccess "github.com/codexfoods/opsboard/internal/domain/access"
	domainauth "github.com/codexfoods/opsboard/internal/domain/auth"
	"github.com/codexfoods/opsboard/internal/domain/model"
	"github.com/codexfoods/opsboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider             = (*MockAuthProvider)(nil)
	_ ports.SessionStore             = (*MemorySessionStore)(nil)
	_ ports.PreferenceStore          = (*MemoryPreferenceStore)(nil)
	_ ports.RoleAssignmentRepository = (*StubRoleAssignments)(nil)
	_ ports.UnitDirectory            = (*StubUnitDirectory)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			Email:     "mock.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.callCount++
	state := fmt.Sprintf("%s-%d", m.StatePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", m.NoncePrefix, m.callCount)
	return m.AuthURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	return m.DefaultUser, nil
}

// MemorySessionStore is an in-memory ports.SessionStore for tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session

	// Optional error hooks
	SaveErr   error
	GetErr    error
	DeleteErr error
	// GetDelay simulates a slow identity provider fetch.
	GetDelay time.Duration
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if s.GetDelay > 0 {
		select {
		case <-time.After(s.GetDelay):
		case <-ctx.Done():
			return domainauth.Session{}, ctx.Err()
		}
	}
	if s.GetErr != nil {
		return domainauth.Session{}, s.GetErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ErrSessionNotFound is returned by MemorySessionStore for unknown ids.
var ErrSessionNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

// MemoryPreferenceStore is an in-memory ports.PreferenceStore for tests.
type MemoryPreferenceStore struct {
	mu         sync.RWMutex
	activeUnit map[string]string
	adminView  map[string]domainaccess.AdminView

	ReadErr  error
	WriteErr error
}

// NewMemoryPreferenceStore creates an empty in-memory preference store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		activeUnit: make(map[string]string),
		adminView:  make(map[string]domainaccess.AdminView),
	}
}

func (s *MemoryPreferenceStore) ActiveUnit(_ context.Context, userID string) (string, error) {
	if s.ReadErr != nil {
		return "", s.ReadErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeUnit[userID], nil
}

func (s *MemoryPreferenceStore) SetActiveUnit(_ context.Context, userID, unitID string) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if unitID == "" {
		delete(s.activeUnit, userID)
		return nil
	}
	s.activeUnit[userID] = unitID
	return nil
}

func (s *MemoryPreferenceStore) AdminView(_ context.Context, userID string) (domainaccess.AdminView, error) {
	if s.ReadErr != nil {
		return "", s.ReadErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminView[userID], nil
}

func (s *MemoryPreferenceStore) SetAdminView(_ context.Context, userID string, view domainaccess.AdminView) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if view == "" {
		delete(s.adminView, userID)
		return nil
	}
	s.adminView[userID] = view
	return nil
}

func (s *MemoryPreferenceStore) Clear(_ context.Context, userID string) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeUnit, userID)
	delete(s.adminView, userID)
	return nil
}

// StubRoleAssignments is a ports.RoleAssignmentRepository backed by a fixed
// slice, with an optional func override for error and timeout scenarios.
type StubRoleAssignments struct {
	Rows         []model.RoleAssignment
	ListByUserFn func(ctx context.Context, userID string) ([]model.RoleAssignment, error)
}

func (s *StubRoleAssignments) ListByUser(ctx context.Context, userID string) ([]model.RoleAssignment, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	out := make([]model.RoleAssignment, 0, len(s.Rows))
	for _, r := range s.Rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// StubUnitDirectory is a ports.UnitDirectory backed by a fixed unit slice.
type StubUnitDirectory struct {
	Units []model.Unit

	ListActiveByNetworksFn func(ctx context.Context, networkIDs []string) ([]model.Unit, error)
	ListAllFn              func(ctx context.Context) ([]model.Unit, error)
}

func (s *StubUnitDirectory) ListActiveByNetworks(ctx context.Context, networkIDs []string) ([]model.Unit, error) {
	if s.ListActiveByNetworksFn != nil {
		return s.ListActiveByNetworksFn(ctx, networkIDs)
	}
	want := make(map[string]bool, len(networkIDs))
	for _, id := range networkIDs {
		want[id] = true
	}
	var out []model.Unit
	for _, u := range s.Units {
		if u.IsActive && want[u.NetworkID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *StubUnitDirectory) ListAll(ctx context.Context) ([]model.Unit, error) {
	if s.ListAllFn != nil {
		return s.ListAllFn(ctx)
	}
	out := make([]model.Unit, len(s.Units))
	copy(out, s.Units)
	return out, nil
}
