package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/iostreams"
	"github.com/rbacctl/rbacctl/internal/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// Env runs a command against a temporary profile configuration and a backend
// chosen by the test.
type Env struct {
	Ctx     context.Context
	Config  *config.ProfiledConfig
	Streams *iostreams.IOStreams
	In      *bytes.Buffer
	Out     *bytes.Buffer
	ErrOut  *bytes.Buffer
}

func NewEnv(t *testing.T, api helpers.API) *Env {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.GetConfig(path, "default", path)
	require.NoError(t, err)
	cfg.SetString(config.ExportDirConfigPath, t.TempDir())

	streams, in, out, errOut := iostreams.NewTestIOStreams()
	factory := helpers.Factory(func(config.Hook, *slog.Logger) (helpers.API, error) {
		return api, nil
	})

	ctx := context.WithValue(context.Background(), config.ConfigKey, config.Hook(cfg))
	ctx = context.WithValue(ctx, iostreams.StreamsKey, &streams)
	ctx = context.WithValue(ctx, log.LoggerKey, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx = context.WithValue(ctx, helpers.FactoryKey, factory)

	return &Env{
		Ctx:     ctx,
		Config:  cfg,
		Streams: &streams,
		In:      in,
		Out:     out,
		ErrOut:  errOut,
	}
}

// Run executes c with args. Cobra's own output goes to the error buffer.
func (e *Env) Run(c *cobra.Command, args ...string) error {
	c.SetArgs(args)
	c.SetOut(e.ErrOut)
	c.SetErr(e.ErrOut)
	c.SilenceUsage = true
	c.SilenceErrors = true
	return c.ExecuteContext(e.Ctx)
}
