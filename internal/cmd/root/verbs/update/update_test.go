package update

import (
	"testing"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/record"
	testcmd "github.com/rbacctl/rbacctl/test/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var hr = record.Record{"appCode": "APP_HR_1", "appName": "HR"}

func runUpdate(t *testing.T, api *helpers.MockAPI, args ...string) (*testcmd.Env, error) {
	t.Helper()
	env := testcmd.NewEnv(t, api)
	c, err := NewUpdateCmd()
	require.NoError(t, err)
	return env, env.Run(c, args...)
}

func TestUpdateMergesOntoCurrentRecord(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Applications.On("List", mock.Anything).Return([]record.Record{hr}, nil).Once()
	want := record.Record{"appCode": "APP_HR_1", "appName": "Human Resources"}
	api.Applications.On("Update", mock.Anything, "APP_HR_1", want).Return(want, nil).Once()

	env, err := runUpdate(t, api, "application", "APP_HR_1", "--name", "Human Resources")
	require.NoError(t, err)

	api.Applications.AssertExpectations(t)
	assert.Contains(t, env.ErrOut.String(), "Application updated successfully")
}

func TestUpdateCannotChangeKey(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Applications.On("List", mock.Anything).Return([]record.Record{hr}, nil).Once()

	_, err := runUpdate(t, api, "application", "APP_HR_1", "--code", "APP_FIN_2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code cannot be changed on update")
	api.Applications.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateWithoutFields(t *testing.T) {
	_, err := runUpdate(t, helpers.NewMockAPI(), "application", "APP_HR_1")
	require.Error(t, err)
	var cfgErr *cmd.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestUpdateMissingKey(t *testing.T) {
	_, err := runUpdate(t, helpers.NewMockAPI(), "role", "--name", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role not found")
}

func TestUpdateUnknownRecord(t *testing.T) {
	api := helpers.NewMockAPI()
	api.Applications.On("List", mock.Anything).Return([]record.Record{hr}, nil).Once()

	_, err := runUpdate(t, api, "application", "APP_NOPE_9", "--name", "x")
	require.Error(t, err)

	var execErr *cmd.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Msg, "not found")
	assert.Contains(t, execErr.Attrs, "suggestion")
}
