package config

import (
	"path/filepath"
	"testing"

	utilviper "github.com/rbacctl/rbacctl/internal/util/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfiledConfig_ProfileEnvWithDashes(t *testing.T) {
	t.Setenv("RBACCTL_TEAM_A_B_C_BACKEND_TOKEN", "token-123")

	profile := "team-a-b-c"
	mainv := utilviper.NewViper("nonexistent.yaml")
	mainv.Set(profile, map[string]any{})

	cfg := BuildProfiledConfig(profile, "nonexistent.yaml", mainv)

	assert.Equal(t, "token-123", cfg.GetString(BackendTokenConfigPath))
}

func TestBuildProfiledConfig_MissingProfileReadsProfileEnv(t *testing.T) {
	t.Setenv("RBACCTL_STAGING_BACKEND_TOKEN", "token-456")

	mainv := utilviper.NewViper("nonexistent.yaml")
	cfg := BuildProfiledConfig("staging", "nonexistent.yaml", mainv)

	assert.Equal(t, "token-456", cfg.GetString(BackendTokenConfigPath))
}

func TestGetConfigProfileEnvOverridesFile(t *testing.T) {
	t.Setenv("RBACCTL_DEFAULT_BACKEND_TOKEN", "from-profile-env")
	t.Setenv("RBACCTL_DEFAULT_DEFAULT_BACKEND_TOKEN", "doubled")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := GetConfig(path, "default", path)
	require.NoError(t, err)

	assert.Equal(t, "from-profile-env", cfg.GetString(BackendTokenConfigPath))
}

func TestGetConfigInitializesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rbacctl", "config.yaml")

	cfg, err := GetConfig(path, "default", path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendBaseURL, cfg.GetString(BackendBaseURLConfigPath))
	assert.Equal(t, 10, cfg.GetIntOrElse(ListPageSizeConfigPath, 0))
	assert.Equal(t, "text", cfg.GetString("output"))
	assert.Equal(t, filepath.Join(filepath.Dir(path), "logs", "rbacctl.log"), cfg.GetString(LogFileConfigPath))
}

func TestGetConfigRejectsMissingCustomPath(t *testing.T) {
	dir := t.TempDir()
	_, err := GetConfig(filepath.Join(dir, "other.yaml"), "default", filepath.Join(dir, "config.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestSavePersistsProfileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := GetConfig(path, "default", path)
	require.NoError(t, err)

	cfg.Set("preferences.theme", "dark")
	require.NoError(t, cfg.Save())

	reloaded, err := GetConfig(path, "default", path)
	require.NoError(t, err)
	assert.Equal(t, "dark", reloaded.GetString("preferences.theme"))
	assert.Equal(t, DefaultBackendBaseURL, reloaded.GetString(BackendBaseURLConfigPath))
}
