package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/codexfoods/opsboard/config"
	"github.com/codexfoods/opsboard/internal/adapters/devauth"
	"github.com/codexfoods/opsboard/internal/adapters/oidc"
	redisadapter "github.com/codexfoods/opsboard/internal/adapters/redis"
	"github.com/codexfoods/opsboard/internal/data"
	"github.com/codexfoods/opsboard/internal/observability/statsd"
	"github.com/codexfoods/opsboard/internal/ports"
	"github.com/codexfoods/opsboard/internal/service"
)

// ServiceContainer holds the application services.
type ServiceContainer struct {
	Auth   *service.AuthService
	Access *service.AccessService
}

// ServiceDependencies groups the external resources services are built on.
type ServiceDependencies struct {
	Config  *config.AppConfig
	DB      *sql.DB
	Redis   redis.UniversalClient
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// BuildServices wires adapters, repositories, and services from configuration.
func BuildServices(deps ServiceDependencies) (ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	provider, err := buildAuthProvider(cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions := redisadapter.NewSessionStore(deps.Redis)
	prefs := redisadapter.NewPreferenceStore(deps.Redis)

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider:      provider,
		Sessions:      sessions,
		Prefs:         prefs,
		Logger:        logger,
		LookupTimeout: cfg.Auth.SessionLookupTimeout,
	})

	accessSvc := service.NewAccessService(service.AccessServiceOptions{
		Roles:          data.NewRoleAssignmentRepo(deps.DB),
		Units:          data.NewUnitRepo(deps.DB),
		Prefs:          prefs,
		Logger:         logger,
		IsSuperAdmin:   cfg.Auth.IsSuperAdminEmail,
		ResolveTimeout: cfg.Auth.PermissionsTimeout,
		Metrics:        deps.Metrics,
	})

	return ServiceContainer{Auth: authSvc, Access: accessSvc}, nil
}

// buildAuthProvider selects the identity provider from configuration.
//
//nolint:ireturn // the caller only needs the port.
func buildAuthProvider(cfg *config.AppConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		if !cfg.IsDev {
			return nil, fmt.Errorf("auth mode %q is only allowed in development", cfg.Auth.Mode)
		}
		logger.Warn("using mock authentication", "user_id", cfg.Auth.DevAuth.UserID)
		return devauth.NewProvider(devauth.Config{
			UserID: cfg.Auth.DevAuth.UserID,
			Email:  cfg.Auth.DevAuth.Email,
		})
	case config.AuthModeOAuth:
		return oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			RedirectURL:  cfg.Auth.OAuth.RedirectURL,
			Scope:        cfg.Auth.OAuth.Scope,
			DiscoveryURL: cfg.Auth.OAuth.DiscoveryURL,
			LogoutURL:    cfg.Auth.OAuth.LogoutURL,
		})
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
