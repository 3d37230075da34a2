package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/build"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/iostreams"
	"github.com/spf13/cobra"
)

// MockHelper implements cmd.Helper. Unset mocks fall back to inert values so
// tests only stub what the command under test reads.
type MockHelper struct {
	GetCmdMock          func() *cobra.Command
	GetArgsMock         func() []string
	GetVerbMock         func() (verbs.VerbValue, error)
	GetStreamsMock      func() *iostreams.IOStreams
	GetConfigMock       func() (config.Hook, error)
	GetOutputFormatMock func() (common.OutputFormat, error)
	IsInteractiveMock   func() (bool, error)
	GetLoggerMock       func() (*slog.Logger, error)
	GetBuildInfoMock    func() (*build.Info, error)
	GetContextMock      func() context.Context
	GetBackendMock      func(cfg config.Hook, logger *slog.Logger) (helpers.API, error)
}

func (m *MockHelper) GetCmd() *cobra.Command {
	if m.GetCmdMock == nil {
		return &cobra.Command{}
	}
	return m.GetCmdMock()
}

func (m *MockHelper) GetArgs() []string {
	if m.GetArgsMock == nil {
		return nil
	}
	return m.GetArgsMock()
}

func (m *MockHelper) GetVerb() (verbs.VerbValue, error) {
	return m.GetVerbMock()
}

func (m *MockHelper) GetStreams() *iostreams.IOStreams {
	return m.GetStreamsMock()
}

func (m *MockHelper) GetConfig() (config.Hook, error) {
	return m.GetConfigMock()
}

func (m *MockHelper) GetOutputFormat() (common.OutputFormat, error) {
	if m.GetOutputFormatMock == nil {
		return common.TEXT, nil
	}
	return m.GetOutputFormatMock()
}

func (m *MockHelper) IsInteractive() (bool, error) {
	if m.IsInteractiveMock == nil {
		return false, nil
	}
	return m.IsInteractiveMock()
}

func (m *MockHelper) GetLogger() (*slog.Logger, error) {
	if m.GetLoggerMock == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	return m.GetLoggerMock()
}

func (m *MockHelper) GetBuildInfo() (*build.Info, error) {
	return m.GetBuildInfoMock()
}

func (m *MockHelper) GetContext() context.Context {
	if m.GetContextMock == nil {
		return context.Background()
	}
	return m.GetContextMock()
}

func (m *MockHelper) GetBackend(cfg config.Hook, logger *slog.Logger) (helpers.API, error) {
	return m.GetBackendMock(cfg, logger)
}
