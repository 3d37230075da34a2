package helpers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rbacctl/rbacctl/internal/backend/auth"
	"github.com/rbacctl/rbacctl/internal/backend/httpclient"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/meta"
)

// API aggregates the backend services so commands and tests can swap the
// whole backend at once.
type API interface {
	GetApplicationAPI() ApplicationAPI
	GetAppsRolesAPI() AppsRolesAPI
	GetAppsFunctionsAPI() AppsFunctionsAPI
	GetRbacAPI() RbacAPI
	GetUserAPI() UserAPI
	GetAppAuthAPI() AppAuthAPI
	GetSessionAPI() SessionAPI
}

// Backend is the REST implementation of API.
type Backend struct {
	Client       *Client
	applications *ApplicationService
	roles        *AppsRolesService
	functions    *AppsFunctionsService
	rbac         *RbacService
	users        *UserService
	appAuth      *AppAuthService
	session      *SessionService
}

func NewBackend(client *Client, sessionFallback func() string) *Backend {
	return &Backend{
		Client:       client,
		applications: NewApplicationService(client),
		roles:        NewAppsRolesService(client),
		functions:    NewAppsFunctionsService(client),
		rbac:         NewRbacService(client),
		users:        NewUserService(client),
		appAuth:      NewAppAuthService(client),
		session:      NewSessionService(client, sessionFallback),
	}
}

func (b *Backend) GetApplicationAPI() ApplicationAPI     { return b.applications }
func (b *Backend) GetAppsRolesAPI() AppsRolesAPI         { return b.roles }
func (b *Backend) GetAppsFunctionsAPI() AppsFunctionsAPI { return b.functions }
func (b *Backend) GetRbacAPI() RbacAPI                   { return b.rbac }
func (b *Backend) GetUserAPI() UserAPI                   { return b.users }
func (b *Backend) GetAppAuthAPI() AppAuthAPI             { return b.appAuth }
func (b *Backend) GetSessionAPI() SessionAPI             { return b.session }

// Factory builds an API from the profile configuration.
type Factory func(cfg config.Hook, logger *slog.Logger) (API, error)

type Key struct{}

// FactoryKey stores the Factory on the command context.
var FactoryKey = Key{}

// DefaultFactory wires the logging, rate limited HTTP client to the configured
// backend.
func DefaultFactory(cfg config.Hook, logger *slog.Logger) (API, error) {
	baseURL := strings.TrimSpace(cfg.GetString(config.BackendBaseURLConfigPath))
	if baseURL == "" {
		return nil, fmt.Errorf("no backend configured, set %s", config.BackendBaseURLConfigPath)
	}

	timeout := 30 * time.Second
	if raw := cfg.GetString(config.BackendTimeoutConfigPath); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", config.BackendTimeoutConfigPath, raw, err)
		}
		timeout = d
	}

	token := auth.ResolveToken(cfg)
	httpClient := httpclient.NewHTTPClient(httpclient.Options{
		Token:             token,
		UserAgent:         meta.CLIName,
		Timeout:           timeout,
		RequestsPerSecond: float64(cfg.GetIntOrElse(config.BackendRateLimitConfigPath, config.DefaultRateLimit)),
		Burst:             cfg.GetIntOrElse(config.BackendRateLimitConfigPath, config.DefaultRateLimit),
	})

	client := NewClient(baseURL, httpclient.NewLoggingHTTPClientWithClient(httpClient, logger))
	return NewBackend(client, func() string { return auth.DisplayNameFromToken(token) }), nil
}
