package preferences

import (
	"fmt"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/output/tableview"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/meta"
	prefs "github.com/rbacctl/rbacctl/internal/preferences"
	"github.com/rbacctl/rbacctl/internal/theme"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

var (
	preferencesUse   = "preferences"
	preferencesShort = i18n.T("root.preferences.preferencesShort", "Manage display preferences")
	preferencesLong  = normalizers.LongDesc(i18n.T("root.preferences.preferencesLong",
		`The preferences command reads and stores the display preferences of the
active profile: theme, font-size, primary-color and animation.

Stored values that are not valid read as their default.`))

	preferencesExamples = normalizers.Examples(i18n.T("root.preferences.preferencesExamples",
		fmt.Sprintf(`
		# Show every preference
		%[1]s preferences get
		# Switch to the dark theme
		%[1]s preferences set theme dark
		# Disable spinners in the interactive view
		%[1]s preferences set animation false
		`, meta.CLIName)))
)

func NewPreferencesCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     preferencesUse,
		Short:   preferencesShort,
		Long:    preferencesLong,
		Example: preferencesExamples,
		Aliases: []string{"prefs", "pref"},
	}
	rv.AddCommand(newGetCmd(), newSetCmd())
	return rv
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "get [key]",
		Short:             i18n.T("root.preferences.getShort", "Show one or every preference"),
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(c *cobra.Command, args []string) error {
			return runGet(cmd.BuildHelper(c, args))
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             i18n.T("root.preferences.setShort", "Store a preference"),
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(c *cobra.Command, args []string) error {
			return runSet(cmd.BuildHelper(c, args))
		},
	}
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		names := make([]string, 0, len(prefs.Keys()))
		for _, k := range prefs.Keys() {
			names = append(names, string(k))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
	if k, err := prefs.ParseKey(args[0]); err == nil && len(args) == 1 {
		return prefs.Allowed(k), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func store(helper cmd.Helper) (*prefs.Store, error) {
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}
	return prefs.NewStore(cfg), nil
}

func runGet(helper cmd.Helper) error {
	s, err := store(helper)
	if err != nil {
		return err
	}
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return &cmd.ExecutionError{Err: err}
	}

	args := helper.GetArgs()
	if len(args) == 1 {
		k, err := prefs.ParseKey(args[0])
		if err != nil {
			return &cmd.ConfigurationError{Err: err}
		}
		if outType == common.TEXT {
			fmt.Fprintln(helper.GetStreams().Out, s.Get(k))
			return nil
		}
		return printValue(helper, outType, map[string]string{string(k): s.Get(k)})
	}

	if outType != common.TEXT {
		return printValue(helper, outType, s.Load())
	}
	pairs := make([][2]string, 0, len(prefs.Keys()))
	for _, k := range prefs.Keys() {
		pairs = append(pairs, [2]string{string(k), s.Get(k)})
	}
	return tableview.RenderPairs(helper.GetStreams(), pairs,
		tableview.WithTitle("Preferences"),
		tableview.WithPalette(theme.FromContext(helper.GetContext())))
}

func runSet(helper cmd.Helper) error {
	s, err := store(helper)
	if err != nil {
		return err
	}
	args := helper.GetArgs()
	k, err := prefs.ParseKey(args[0])
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	if err := s.Set(k, args[1]); err != nil {
		if _, verr := prefs.Validate(k, args[1]); verr != nil {
			return &cmd.ConfigurationError{Err: verr}
		}
		return cmd.PrepareExecutionErrorWithHelper(helper, "failed to save preferences", err)
	}
	if logger, err := helper.GetLogger(); err == nil {
		logger.Debug("preference stored", "key", string(k), "value", s.Get(k))
	}
	fmt.Fprintf(helper.GetStreams().ErrOut, "%s set to %s\n", k, s.Get(k))
	return nil
}

func printValue(helper cmd.Helper, outType common.OutputFormat, v any) error {
	printer, err := cli.Format(outType.String(), helper.GetStreams().Out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	return tableview.RenderForFormat(helper, outType, printer, helper.GetStreams(), export.Table{}, v)
}
