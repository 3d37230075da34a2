package list

import (
	"context"
	"fmt"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/output/tableview"
	"github.com/rbacctl/rbacctl/internal/cmd/root/resources"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/record"
	"github.com/rbacctl/rbacctl/internal/theme"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.List

	RefreshEveryFlagName = "refresh-every"
	ExportFormatFlagName = "export-format"
)

var (
	listUse = Verb.String() + " <resource>"

	listShort = i18n.T("root.verbs.list.listShort", "List records of a resource")

	listLong = normalizers.LongDesc(i18n.T("root.verbs.list.listLong",
		`Use list to show one page of the records of a resource.

The collection is filtered by the search term and the selector flags before it
is paged. Use --interactive to browse the collection in a terminal UI.`))

	listExamples = normalizers.Examples(i18n.T("root.verbs.list.listExamples",
		fmt.Sprintf(`
		# List every application
		%[1]s list applications --page-size 0
		# Search roles of one application
		%[1]s list roles --app APP_HR_1 --search admin
		# Browse users interactively, refreshing every minute
		%[1]s list users -i --refresh-every "@every 1m"
		`, meta.CLIName)))
)

func NewListCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:               listUse,
		Short:             listShort,
		Long:              listLong,
		Example:           listExamples,
		Aliases:           []string{"ls", "l"},
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: resources.CompleteResources,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		PreRunE: func(c *cobra.Command, args []string) error {
			return bindFlags(cmd.BuildHelper(c, args))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			rc, err := resources.Resolve(helper)
			if err != nil {
				return err
			}
			return run(rc)
		},
	}

	resources.AddListFlags(c)
	c.Flags().String(RefreshEveryFlagName, "",
		fmt.Sprintf(`Cron schedule that refreshes the interactive view, e.g. "@every 30s".
 (config path = '%s')`, config.ListRefreshConfigPath))
	c.Flags().String(ExportFormatFlagName, string(export.CSV),
		fmt.Sprintf("Format written by the export key of the interactive view. Allowed: %v", export.Formats()))

	return c, nil
}

func bindFlags(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	if err := resources.BindListFlags(helper.GetCmd(), cfg); err != nil {
		return err
	}
	f := helper.GetCmd().Flags().Lookup(RefreshEveryFlagName)
	return cfg.BindFlag(config.ListRefreshConfigPath, f)
}

func run(rc *resources.Context) error {
	helper := rc.Helper
	criteria, err := resources.Criteria(helper.GetCmd(), rc.Def)
	if err != nil {
		return err
	}
	view, page, err := resources.View(helper.GetCmd(), rc.Def, rc.Config, criteria)
	if err != nil {
		return err
	}

	interactive, err := helper.IsInteractive()
	if err != nil {
		return err
	}
	if interactive {
		return browse(rc, view)
	}

	loader := listing.NewLoader(rc.Def.Fetcher(rc.Ops.List, rc.Locale()), nil)
	if err := loader.Load(helper.GetContext()); err != nil {
		return cmd.PrepareExecutionErrorWithHelper(helper, fmt.Sprintf("failed to load %s", rc.Def.Plural), err)
	}
	collection := loader.Collection()
	view.GoToPage(collection, page)
	window := view.Window(collection)

	var printer cli.PrintFlusher
	if rc.Output != common.TEXT {
		printer, err = rc.Printer()
		if err != nil {
			return err
		}
		defer printer.Flush()
	}

	rows := window.Rows
	if rows == nil {
		rows = []record.Record{}
	}
	return tableview.RenderForFormat(helper, rc.Output, printer, helper.GetStreams(),
		rc.Def.Table(rows), rows,
		tableview.WithTitle(rc.Def.Title),
		tableview.WithFooter(window.Info),
	)
}

func browse(rc *resources.Context, view *listing.View) error {
	helper := rc.Helper
	streams := helper.GetStreams()
	if !streams.IsInteractive() {
		return &cmd.ConfigurationError{Err: fmt.Errorf("--%s requires a terminal", common.InteractiveFlagName)}
	}

	formatName, _ := helper.GetCmd().Flags().GetString(ExportFormatFlagName)
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	schedule := rc.Config.GetString(config.ListRefreshConfigPath)
	if err := tableview.ValidateSchedule(schedule); err != nil {
		return &cmd.ConfigurationError{Err: err}
	}

	err = tableview.Browse(helper.GetContext(), streams, tableview.BrowserOptions{
		Definition:   rc.Def,
		Ops:          rc.Ops,
		Tag:          rc.Locale(),
		Palette:      theme.FromContext(helper.GetContext()),
		Logger:       rc.Logger,
		RowsPerPage:  view.RowsPerPage(),
		Criteria:     view.Criteria(),
		ExportFormat: format,
		ExportDir:    rc.Config.GetString(config.ExportDirConfigPath),
		RefreshEvery: schedule,
	})
	if err != nil {
		return cmd.PrepareExecutionErrorWithHelper(helper, "interactive view failed", err)
	}
	return nil
}
