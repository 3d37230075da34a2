package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/root/resources"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.Export

	FormatFlagName = "format"
	stampLayout    = "20060102-150405"
)

var (
	exportUse = Verb.String() + " <resource>"

	exportShort = i18n.T("root.verbs.export.exportShort", "Export records to CSV, Excel or PDF")

	exportLong = normalizers.LongDesc(i18n.T("root.verbs.export.exportLong",
		`Use export to write the records of a resource to a file.

Every record matching the search term and selector flags is written, not only
the current page. The format follows the file extension unless --format is
given. Without --file the export is written to the export directory of the
profile as <resource>-<timestamp>.<format>.`))

	exportExamples = normalizers.Examples(i18n.T("root.verbs.export.exportExamples",
		fmt.Sprintf(`
		# Export every role to a spreadsheet
		%[1]s export roles --file roles.xlsx
		# Export the active applications as PDF into the export directory
		%[1]s export applications --status active --format pdf
		`, meta.CLIName)))
)

func NewExportCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:               exportUse,
		Short:             exportShort,
		Long:              exportLong,
		Example:           exportExamples,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: resources.CompleteResources,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			rc, err := resources.Resolve(helper)
			if err != nil {
				return err
			}
			return run(rc, time.Now)
		},
	}

	resources.AddListFlags(c)
	c.Flags().StringP(resources.FileFlagName, resources.FileFlagShort, "",
		fmt.Sprintf("Destination file. Defaults to a timestamped file in '%s'.", config.ExportDirConfigPath))
	c.Flags().String(FormatFlagName, "",
		fmt.Sprintf("Export format, inferred from --%s when empty. Allowed: %v", resources.FileFlagName, export.Formats()))
	return c, nil
}

func run(rc *resources.Context, now func() time.Time) error {
	helper := rc.Helper
	c := helper.GetCmd()

	path, format, err := destination(rc, now)
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}

	criteria, err := resources.Criteria(c, rc.Def)
	if err != nil {
		return err
	}
	view := listing.NewView(rc.Def.Matcher(), 0)
	view.SetCriteria(criteria)

	loader := listing.NewLoader(rc.Def.Fetcher(rc.Ops.List, rc.Locale()), nil)
	if err := loader.Load(helper.GetContext()); err != nil {
		return cmd.PrepareExecutionErrorWithHelper(helper, fmt.Sprintf("failed to load %s", rc.Def.Plural), err)
	}
	filtered := view.Window(loader.Collection()).Filtered

	if err := export.WriteFile(path, format, rc.Def.Table(filtered)); err != nil {
		return cmd.PrepareExecutionErrorWithHelper(helper, "export failed", err, "path", path)
	}
	rc.Logger.Info("exported records", "resource", rc.Def.Name, "count", len(filtered), "path", path)
	fmt.Fprintf(helper.GetStreams().Out, "Exported %d %s to %s\n", len(filtered), rc.Def.Plural, path)
	return nil
}

// destination resolves the output path and format from the flags, falling
// back to the configured export directory.
func destination(rc *resources.Context, now func() time.Time) (string, export.Format, error) {
	c := rc.Helper.GetCmd()
	path, _ := c.Flags().GetString(resources.FileFlagName)
	formatName, _ := c.Flags().GetString(FormatFlagName)

	var format export.Format
	if formatName != "" {
		f, err := export.ParseFormat(formatName)
		if err != nil {
			return "", "", err
		}
		format = f
	}

	if path != "" {
		if format == "" {
			f, err := export.FormatFromPath(path)
			if err != nil {
				return "", "", fmt.Errorf("%w, pass --%s", err, FormatFlagName)
			}
			format = f
		}
		return path, format, nil
	}

	if format == "" {
		format = export.CSV
	}
	name := export.DefaultFileName(rc.Def.Plural, now().Format(stampLayout), format)
	return filepath.Join(rc.Config.GetString(config.ExportDirConfigPath), name), format, nil
}
