package list

import (
	"testing"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
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

func newEnv(t *testing.T, api *helpers.MockAPI) *testcmd.Env {
	t.Helper()
	return testcmd.NewEnv(t, api)
}

func runList(t *testing.T, env *testcmd.Env, args ...string) error {
	t.Helper()
	c, err := NewListCmd()
	require.NoError(t, err)
	return env.Run(c, args...)
}

func TestListTextFiltersBySelector(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil).Once()
	env := newEnv(t, api)

	require.NoError(t, runList(t, env, "roles", "--app", "app_hr_1"))

	out := env.Out.String()
	assert.Contains(t, out, "Application Roles")
	assert.Contains(t, out, "R_ADMIN")
	assert.Contains(t, out, "R_VIEW")
	assert.NotContains(t, out, "R_AUDIT")
	assert.Contains(t, out, "Showing 1 to 2 of 2 Records")
}

func TestListApplicationsByDisplayedStatus(t *testing.T) {
	apps := []record.Record{
		{"appCode": "APP_HR_1", "appName": "HR", "isActive": true},
		{"appCode": "APP_FIN_2", "appName": "Finance", "status": "Y"},
		{"appCode": "APP_OPS_3", "appName": "Ops", "isActive": false},
	}
	api := helpers.NewMockAPI()
	api.Applications.On("List", mock.Anything).Return(apps, nil).Once()
	env := newEnv(t, api)
	env.Config.SetString(common.OutputConfigPath, "json")

	require.NoError(t, runList(t, env, "applications", "--status", "active"))
	assert.JSONEq(t, `[
		{"appCode":"APP_FIN_2","appName":"Finance","status":"Y"},
		{"appCode":"APP_HR_1","appName":"HR","isActive":true}
	]`, env.Out.String())
}

func TestListJSONPage(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil).Once()
	env := newEnv(t, api)
	env.Config.SetString(common.OutputConfigPath, "json")

	require.NoError(t, runList(t, env, "roles", "--page-size", "1", "--page", "2"))
	assert.JSONEq(t, `[{"appCode":"APP_HR_1","roleCode":"R_VIEW","roleName":"Viewer"}]`, env.Out.String())
}

func TestListPageBeyondRangeIsClamped(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil).Once()
	env := newEnv(t, api)
	env.Config.SetString(common.OutputConfigPath, "json")

	require.NoError(t, runList(t, env, "roles", "--page-size", "2", "--page", "9"))
	assert.JSONEq(t, `[{"appCode":"APP_FIN_2","roleCode":"R_AUDIT","roleName":"Auditor"}]`, env.Out.String())
}

func TestListSearchWithoutMatches(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil).Once()
	env := newEnv(t, api)

	require.NoError(t, runList(t, env, "roles", "--search", "nobody"))
	assert.Contains(t, env.Out.String(), "No records found.")
}

func TestListRejectsForeignSelector(t *testing.T) {
	env := newEnv(t, helpers.NewMockAPI())
	err := runList(t, env, "applications", "--role", "R_ADMIN")
	require.Error(t, err)

	var cfgErr *cmd.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "--role is not a filter of applications")
}

func TestListBackendFailure(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(nil, &helpers.APIError{StatusCode: 503}).Once()
	env := newEnv(t, api)

	err := runList(t, env, "roles")
	require.Error(t, err)

	var execErr *cmd.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "failed to load roles", execErr.Msg)
}
