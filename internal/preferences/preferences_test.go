package preferences

import (
	"path/filepath"
	"testing"

	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T) (*config.ProfiledConfig, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.GetConfig(path, "default", path)
	require.NoError(t, err)
	return cfg, path
}

func TestDefaultsWhenUnset(t *testing.T) {
	cfg, _ := newConfig(t)
	assert.Equal(t, Defaults(), NewStore(cfg).Load())
	assert.Equal(t, Defaults(), NewStore(nil).Load())
}

func TestSetPersistsAndReloads(t *testing.T) {
	cfg, path := newConfig(t)
	store := NewStore(cfg)

	require.NoError(t, store.Set(Theme, "Dark"))
	require.NoError(t, store.Set(FontSize, "large"))
	require.NoError(t, store.Set(PrimaryColor, "teal"))
	require.NoError(t, store.Set(Animation, "0"))
	require.NoError(t, store.Set(Theme, "light"), "last write wins")

	reloaded, err := config.GetConfig(path, "default", path)
	require.NoError(t, err)
	assert.Equal(t, Preferences{
		Theme:        ThemeLight,
		FontSize:     FontLarge,
		PrimaryColor: "teal",
		Animation:    false,
	}, NewStore(reloaded).Load())
}

func TestSetRejectsInvalidValues(t *testing.T) {
	cfg, _ := newConfig(t)
	store := NewStore(cfg)

	assert.ErrorContains(t, store.Set(PrimaryColor, "magenta"), "allowed: blue, green")
	assert.ErrorContains(t, store.Set(FontSize, "huge"), "invalid font-size")
	assert.Equal(t, "blue", store.Get(PrimaryColor))
}

func TestInvalidStoredValueReadsAsDefault(t *testing.T) {
	cfg, _ := newConfig(t)
	cfg.SetString("preferences.theme", "neon")
	assert.Equal(t, ThemeSystem, NewStore(cfg).Get(Theme))
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("Primary_Color")
	require.NoError(t, err)
	assert.Equal(t, PrimaryColor, k)

	_, err = ParseKey("rows-per-page")
	assert.ErrorContains(t, err, "unknown preference")
}
