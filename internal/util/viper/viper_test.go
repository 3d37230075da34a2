package viper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViperEnvKeyReplacer(t *testing.T) {
	t.Setenv("RBACCTL_LOG_LEVEL", "debug")
	t.Setenv("RBACCTL_BACKEND_BASE_URL", "http://rbac.local")

	v := NewViper("nonexistent.yaml")

	assert.Equal(t, "debug", v.GetString("log-level"))
	assert.Equal(t, "http://rbac.local", v.GetString("backend.base-url"))
}

func TestNewViperEnvKeyReplacerProfileWithDashes(t *testing.T) {
	t.Setenv("RBACCTL_TEAM_A_BACKEND_TOKEN", "token-123")

	v := NewViper("nonexistent.yaml")
	v.Set("team-a", map[string]any{})

	profile := v.Sub("team-a")
	require.NotNil(t, profile)
	ConfigureEnvVars(profile, "RBACCTL")
	assert.Equal(t, "token-123", profile.GetString("backend.token"))
}

func TestInitializeDefaultViperWritesDefaultsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	v, err := InitializeDefaultViper(map[string]any{"default": map[string]any{"output": "text"}}, path)
	require.NoError(t, err)
	assert.Equal(t, "text", v.GetString("default.output"))

	_, err = os.Stat(path)
	require.NoError(t, err)

	v, err = InitializeDefaultViper(map[string]any{"default": map[string]any{"output": "json"}}, path)
	require.NoError(t, err)
	assert.Equal(t, "text", v.GetString("default.output"), "existing file is not overwritten")
}

func TestNewViperEFailsOnMissingFile(t *testing.T) {
	_, err := NewViperE(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
