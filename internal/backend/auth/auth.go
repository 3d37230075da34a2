package auth

import (
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/meta"
)

const (
	// TokenFileConfigPath points at a file holding the bearer token.
	TokenFileConfigPath = "backend.token-file"
	tokenEnvVar         = meta.EnvPrefix + "_TOKEN"
)

// nameClaims are read in order to find a display name.
var nameClaims = []string{"name", "preferred_username", "unique_name", "given_name", "email", "sub"}

// ResolveToken returns the bearer token from, in order of precedence, the
// profile configuration (including the bound --token flag and profile scoped
// environment), the token file, and RBACCTL_TOKEN. Empty means anonymous.
func ResolveToken(cfg config.Hook) string {
	if cfg != nil {
		if t := strings.TrimSpace(cfg.GetString(config.BackendTokenConfigPath)); t != "" {
			return t
		}
		if path := strings.TrimSpace(cfg.GetString(TokenFileConfigPath)); path != "" {
			if data, err := os.ReadFile(os.ExpandEnv(path)); err == nil {
				if t := strings.TrimSpace(string(data)); t != "" {
					return t
				}
			}
		}
	}
	return strings.TrimSpace(os.Getenv(tokenEnvVar))
}

// DisplayNameFromToken reads a display name from the claims of a JWT without
// verifying it. It is only used for the header label when the session
// endpoint has nothing to say; the backend remains the authority.
func DisplayNameFromToken(token string) string {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range nameClaims {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
