package version

import (
	"testing"

	"github.com/rbacctl/rbacctl/internal/build"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/iostreams"
	"github.com/rbacctl/rbacctl/test/cmd"
	testConfig "github.com/rbacctl/rbacctl/test/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHelper(streams *iostreams.IOStreams, format common.OutputFormat, showCommit bool) *cmd.MockHelper {
	return &cmd.MockHelper{
		GetOutputFormatMock: func() (common.OutputFormat, error) {
			return format, nil
		},
		GetConfigMock: func() (config.Hook, error) {
			return &testConfig.MockConfigHook{
				GetBoolMock: func(key string) bool {
					return key == ShowCommitConfigPath && showCommit
				},
			}, nil
		},
		GetStreamsMock: func() *iostreams.IOStreams {
			return streams
		},
		GetBuildInfoMock: func() (*build.Info, error) {
			return &build.Info{Version: "1.4.0", Commit: "abc123", Date: "2026-01-02"}, nil
		},
	}
}

func TestVersionText(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, run(newHelper(&streams, common.TEXT, false)))
	assert.Equal(t, "1.4.0\n", out.String())
}

func TestVersionTextWithCommit(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, run(newHelper(&streams, common.TEXT, true)))
	assert.Equal(t, "1.4.0 (abc123, 2026-01-02)\n", out.String())
}

func TestVersionJSON(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, run(newHelper(&streams, common.JSON, true)))
	assert.JSONEq(t, `{"version":"1.4.0","commit":"abc123","date":"2026-01-02"}`, out.String())
}
