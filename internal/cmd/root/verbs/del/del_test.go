package del

import (
	"errors"
	"testing"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/record"
	testcmd "github.com/rbacctl/rbacctl/test/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var roles = []record.Record{
	{"appCode": "APP_HR_1", "roleCode": "R_ADMIN", "roleName": "Admin"},
	{"appCode": "APP_HR_1", "roleCode": "R_VIEW", "roleName": "Viewer"},
}

func newEnv(t *testing.T, api *helpers.MockAPI, answer string) *testcmd.Env {
	t.Helper()
	env := testcmd.NewEnv(t, api)
	env.In.WriteString(answer)
	return env
}

func runDelete(t *testing.T, env *testcmd.Env, args ...string) error {
	t.Helper()
	c, err := NewDeleteCmd()
	require.NoError(t, err)
	return env.Run(c, args...)
}

func TestDeleteAfterConfirmation(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil)
	api.Roles.On("Delete", mock.Anything, "R_ADMIN").Return(nil).Once()

	env := newEnv(t, api, "yes\n")
	require.NoError(t, runDelete(t, env, "role", "R_ADMIN"))

	api.Roles.AssertExpectations(t)
	assert.Contains(t, env.Out.String(), "You are about to delete role R_ADMIN (Admin)")
	assert.Contains(t, env.ErrOut.String(), "Role deleted successfully")
}

func TestDeleteDeclinedNeverCallsBackend(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil)

	env := newEnv(t, api, "y\n")
	err := runDelete(t, env, "role", "R_ADMIN")
	require.Error(t, err)

	var execErr *cmd.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "delete cancelled", execErr.Msg)
	api.Roles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteApproveSkipsPrompt(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil)
	api.Roles.On("Delete", mock.Anything, "R_ADMIN").Return(nil).Once()
	api.Roles.On("Delete", mock.Anything, "R_VIEW").Return(nil).Once()

	env := newEnv(t, api, "")
	require.NoError(t, runDelete(t, env, "role", "R_ADMIN", "R_VIEW", "--approve"))

	api.Roles.AssertExpectations(t)
	assert.NotContains(t, env.Out.String(), "You are about to delete")
}

func TestDeleteStopsAtFirstFailure(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Roles.On("List", mock.Anything).Return(roles, nil)
	api.Roles.On("Delete", mock.Anything, "R_ADMIN").Return(errors.New("in use")).Once()

	env := newEnv(t, api, "")
	err := runDelete(t, env, "role", "R_ADMIN", "R_VIEW", "--approve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to delete role")
	api.Roles.AssertNotCalled(t, "Delete", mock.Anything, "R_VIEW")
}

func TestDeleteUserByGrantKey(t *testing.T) {
	api := helpers.NewMockAPI()
	grant := record.Record{"authCode": "A1", "userId": "u-100", "appCode": "APP_HR_1", "roleCode": "R_ADMIN"}
	api.Users.On("GetByUserID", mock.Anything, "u-100").Return([]record.Record{grant}, nil)
	api.Users.On("Delete", mock.Anything, "u-100", "APP_HR_1", "R_ADMIN").Return(nil).Once()

	env := newEnv(t, api, "")
	require.NoError(t, runDelete(t, env, "user", "u-100/APP_HR_1/R_ADMIN", "--approve"))
	api.Users.AssertExpectations(t)
}

func TestDeleteRequiresKey(t *testing.T) {
	err := runDelete(t, newEnv(t, helpers.NewMockAPI(), ""), "role")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role not found: a role key is required")
}
