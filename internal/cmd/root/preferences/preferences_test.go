package preferences

import (
	"testing"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	prefs "github.com/rbacctl/rbacctl/internal/preferences"
	testcmd "github.com/rbacctl/rbacctl/test/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetThenGet(t *testing.T) {
	env := testcmd.NewEnv(t, helpers.NewMockAPI())

	require.NoError(t, env.Run(NewPreferencesCmd(), "set", "primary_color", "Teal"))
	assert.Equal(t, "primary-color set to teal\n", env.ErrOut.String())
	assert.Equal(t, "teal", prefs.NewStore(env.Config).Get(prefs.PrimaryColor))

	require.NoError(t, env.Run(NewPreferencesCmd(), "get", "primary-color"))
	assert.Equal(t, "teal\n", env.Out.String())
}

func TestGetAllJSON(t *testing.T) {
	env := testcmd.NewEnv(t, helpers.NewMockAPI())
	env.Config.SetString(common.OutputConfigPath, "json")

	require.NoError(t, env.Run(NewPreferencesCmd(), "get"))
	assert.JSONEq(t, `{"theme":"system","font-size":"base","primary-color":"blue","animation":true}`, env.Out.String())
}

func TestGetAllText(t *testing.T) {
	env := testcmd.NewEnv(t, helpers.NewMockAPI())

	require.NoError(t, env.Run(NewPreferencesCmd(), "get"))
	for _, want := range []string{"Preferences", "theme", "font-size", "primary-color", "animation"} {
		assert.Contains(t, env.Out.String(), want)
	}
}

func TestSetRejectsInvalidValue(t *testing.T) {
	env := testcmd.NewEnv(t, helpers.NewMockAPI())

	err := env.Run(NewPreferencesCmd(), "set", "theme", "neon")
	require.Error(t, err)

	var cfgErr *cmd.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "allowed: light, dark, system")
	assert.Equal(t, prefs.ThemeSystem, prefs.NewStore(env.Config).Get(prefs.Theme))
}

func TestUnknownKey(t *testing.T) {
	env := testcmd.NewEnv(t, helpers.NewMockAPI())

	err := env.Run(NewPreferencesCmd(), "get", "volume")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown preference "volume"`)
}
