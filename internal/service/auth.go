package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/codexfoods/opsboard/internal/domain/auth"
	"github.com/codexfoods/opsboard/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Prefs    ports.PreferenceStore
	Logger   *slog.Logger

	// LookupTimeout bounds session store reads; zero means no bound.
	LookupTimeout time.Duration
}

// AuthService orchestrates authentication flows: provider exchange, session
// persistence, and the sign-out cleanup of persisted preferences.
type AuthService struct {
	provider      ports.AuthProvider
	sessions      ports.SessionStore
	prefs         ports.PreferenceStore
	logger        *slog.Logger
	lookupTimeout time.Duration
}

var (
	errSessionExpired = errors.New("session expired")

	// ErrSessionUnavailable is returned when the session store did not answer
	// within the lookup bound. Callers treat the request as anonymous rather
	// than hanging (fail-open to anonymous).
	ErrSessionUnavailable = errors.New("session store unavailable")
)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider:      opts.Provider,
		sessions:      opts.Sessions,
		prefs:         opts.Prefs,
		logger:        logger,
		lookupTimeout: opts.LookupTimeout,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code for
// an identity and persisting a session. Roles are not resolved here: the
// access service derives them from role assignment rows on demand.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	session := domainauth.Session{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a session by ID, bounded by the configured lookup
// timeout. A store that does not answer within the bound yields
// ErrSessionUnavailable so the caller can degrade to anonymous instead of
// blocking the request indefinitely.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "session lookup timed out; treating as anonymous", "error", err)
			return nil, ErrSessionUnavailable
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(time.Now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes the session and the user's persisted preferences (active
// unit, admin view). Local cleanup is unconditional: failures against the
// remote stores are logged but never surfaced, so a broken backend cannot
// strand the user in an authenticated-looking state.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err == nil && s.prefs != nil {
		if clearErr := s.prefs.Clear(ctx, session.UserID); clearErr != nil {
			s.logger.WarnContext(ctx, "clear preferences on logout failed", "error", clearErr)
		}
	}

	if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
		s.logger.WarnContext(ctx, "session invalidation failed; cookie cleared anyway", "error", deleteErr)
	}
	return nil
}
