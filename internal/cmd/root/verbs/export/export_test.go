package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/record"
	testcmd "github.com/rbacctl/rbacctl/test/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var roles = []record.Record{
	{"appCode": "APP_HR_1", "roleCode": "R_ADMIN", "roleName": "Admin"},
	{"appCode": "APP_HR_1", "roleCode": "R_VIEW", "roleName": "Viewer"},
	{"appCode": "APP_FIN_2", "roleCode": "R_AUDIT", "roleName": "Auditor"},
}

func runExport(t *testing.T, api *helpers.MockAPI, args ...string) (*testcmd.Env, error) {
	t.Helper()
	env := testcmd.NewEnv(t, api)
	c, err := NewExportCmd()
	require.NoError(t, err)
	return env, env.Run(c, args...)
}

func TestExportWritesEveryFilteredRecord(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil).Once()
	path := filepath.Join(t.TempDir(), "out", "roles.csv")

	env, err := runExport(t, api, "roles", "--app", "APP_HR_1", "--page-size", "1", "--file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "App Code,Role Code,Role Name,Description\n"+
		"APP_HR_1,R_ADMIN,Admin,\n"+
		"APP_HR_1,R_VIEW,Viewer,\n", string(data))
	assert.Equal(t, "Exported 2 roles to "+path+"\n", env.Out.String())
}

func TestExportDefaultsToExportDir(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil).Once()

	env, err := runExport(t, api, "roles", "--format", "xlsx")
	require.NoError(t, err)

	dir := env.Config.GetString(config.ExportDirConfigPath)
	matches, err := filepath.Glob(filepath.Join(dir, "roles-*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Regexp(t, `roles-\d{8}-\d{6}\.xlsx`, matches[0])
	assert.Contains(t, env.Out.String(), "Exported 3 roles to ")
}

func TestExportUnknownExtension(t *testing.T) {
	api := helpers.NewMockAPI()
	_, err := runExport(t, api, "roles", "--file", filepath.Join(t.TempDir(), "roles.txt"))
	require.Error(t, err)

	var cfgErr *cmd.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "pass --format")
	api.Roles.AssertNotCalled(t, "List", mock.Anything)
}

func TestExportLoadFailure(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(nil, &helpers.APIError{StatusCode: 500}).Once()

	_, err := runExport(t, api, "roles", "--file", filepath.Join(t.TempDir(), "roles.pdf"))
	require.Error(t, err)

	var execErr *cmd.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "failed to load roles", execErr.Msg)
}
