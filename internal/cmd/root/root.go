package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rbacctl/rbacctl/internal/build"
	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	jqoutput "github.com/rbacctl/rbacctl/internal/cmd/output/jq"
	prefscmd "github.com/rbacctl/rbacctl/internal/cmd/root/preferences"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs/create"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs/del"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs/export"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs/get"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs/list"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs/update"
	"github.com/rbacctl/rbacctl/internal/cmd/root/version"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/iostreams"
	"github.com/rbacctl/rbacctl/internal/log"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/preferences"
	"github.com/rbacctl/rbacctl/internal/theme"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const DefaultProfile = "default"

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", `
  rbacctl manages the applications, roles, functions, role grants, users and
  application authorizations of an RBAC administration backend.

  Every resource supports list, get and export. Writable resources also
  support create, update and delete. Use "list --interactive" to browse a
  resource in the terminal.`))

	rootShort = i18n.T("root.rootShort", fmt.Sprintf("%s administers role based access control", meta.CLIName))

	rootCmd *cobra.Command

	configFilePath string
	currProfile    = DefaultProfile

	currConfig   config.Hook
	streams      *iostreams.IOStreams
	outputFormat = cmd.NewEnum([]string{"json", "yaml", "text"}, common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum(common.LogLevels(), common.DefaultLogLevel)

	buildInfo *build.Info
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   meta.CLIName,
		Short: rootShort,
		Long:  rootLong,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			logger, err := newLogger(currConfig)
			if err != nil {
				return &cmd.ConfigurationError{Err: err}
			}

			var detect theme.BackgroundDetector
			if streams.IsInteractive() {
				detect = theme.TerminalBackground
			}
			palette := theme.Resolve(preferences.NewStore(currConfig).Load(), detect)

			ctx := context.WithValue(c.Context(), config.ConfigKey, currConfig)
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			ctx = theme.ContextWithPalette(ctx, palette)
			c.SetContext(ctx)

			logger.Debug("command started",
				"command", c.CommandPath(),
				"args", log.RedactArgs(os.Args[1:]),
				"profile", currConfig.GetProfile())
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return closeLog()
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	defaultPath, err := config.GetDefaultConfigFilePath()
	cobra.CheckErr(err)
	configFilePath = defaultPath

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFilePath, common.ConfigFilePathFlagName, defaultPath,
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	pf.StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort, DefaultProfile,
		"Specify the profile to use for this command.")

	pf.VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(outputFormat.Allowed, "|")))

	pf.Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level. Execution logs are written to the log file.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(logLevel.Allowed, "|")))

	pf.String(common.LogFileFlagName, "",
		fmt.Sprintf(`Write execution logs to the specified file.
- Config path: [ %s ]`, config.LogFileConfigPath))

	pf.String(common.BaseURLFlagName, "",
		fmt.Sprintf(`Base URL of the RBAC backend.
- Config path: [ %s ]`, config.BackendBaseURLConfigPath))

	pf.String(common.TokenFlagName, "",
		fmt.Sprintf(`Bearer token sent to the backend.
- Config path: [ %s ]`, config.BackendTokenConfigPath))

	pf.BoolP(common.InteractiveFlagName, common.InteractiveFlagShort, false,
		"Browse results in an interactive terminal view.")

	jqoutput.AddFlags(pf)

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() error {
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(prefscmd.NewPreferencesCmd())

	for _, newCmd := range []func() (*cobra.Command, error){
		list.NewListCmd,
		get.NewGetCmd,
		create.NewCreateCmd,
		update.NewUpdateCmd,
		del.NewDeleteCmd,
		export.NewExportCmd,
	} {
		c, err := newCmd()
		if err != nil {
			return err
		}
		rootCmd.AddCommand(c)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	err := addCommands()
	cobra.CheckErr(err)

	// The profile is not part of the configuration, so viper cannot resolve
	// it. The environment variable is read here and the flag overrides it.
	profileEnvVar, found := os.LookupEnv(fmt.Sprintf("%s_PROFILE", meta.EnvPrefix))
	if found {
		currProfile = profileEnvVar
	}
}

func initConfig() {
	defaultPath, err := config.GetDefaultConfigFilePath()
	cobra.CheckErr(err)
	cfg, err := config.GetConfig(configFilePath, currProfile, defaultPath)
	cobra.CheckErr(err)
	currConfig = cfg

	flags := rootCmd.PersistentFlags()
	for path, name := range map[string]string{
		common.OutputConfigPath:         common.OutputFlagName,
		common.LogLevelConfigPath:       common.LogLevelFlagName,
		config.LogFileConfigPath:        common.LogFileFlagName,
		config.BackendBaseURLConfigPath: common.BaseURLFlagName,
		config.BackendTokenConfigPath:   common.TokenFlagName,
	} {
		cobra.CheckErr(cfg.BindFlag(path, flags.Lookup(name)))
	}
	cobra.CheckErr(jqoutput.BindFlags(cfg, flags))
}

// newLogger writes JSON records to the rotated log file and mirrors errors to
// the error stream.
func newLogger(cfg config.Hook) (*slog.Logger, error) {
	level := log.ConfigLevelStringToSlogLevel(cfg.GetString(common.LogLevelConfigPath))

	var primary io.Writer
	if path := strings.TrimSpace(cfg.GetString(config.LogFileConfigPath)); path != "" {
		w, err := log.NewFileWriter(log.FileOptions{
			Path:       os.ExpandEnv(path),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
		}
		primary, logCloser = w, w
	}
	return log.NewLogger(primary, streams.ErrOut, level), nil
}

func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	err := rootCmd.ExecuteContext(ctx)
	_ = closeLog()
	if err == nil {
		return
	}

	var executionError *cmd.ExecutionError
	if errors.As(err, &executionError) {
		printExecutionError(s.ErrOut, executionError)
	}
	os.Exit(1)
}

func printExecutionError(out io.Writer, err *cmd.ExecutionError) {
	msg := err.Msg
	if msg == "" {
		msg = err.Error()
	}
	format := outputFormat.String()
	if currConfig != nil {
		if configured := currConfig.GetString(common.OutputConfigPath); configured != "" {
			format = configured
		}
	}
	if format == common.DefaultOutputFormat {
		fmt.Fprintf(out, "Error: %s\n", msg)
		for i := 0; i+1 < len(err.Attrs); i += 2 {
			fmt.Fprintf(out, "  %v: %v\n", err.Attrs[i], err.Attrs[i+1])
		}
		return
	}

	result := map[string]any{"error": msg}
	for i := 0; i+1 < len(err.Attrs); i += 2 {
		result[fmt.Sprint(err.Attrs[i])] = err.Attrs[i+1]
	}
	printer, perr := cli.Format(format, out)
	if perr != nil {
		fmt.Fprintf(out, "Error: %s\n", msg)
		return
	}
	defer printer.Flush()
	printer.Print(result)
}
