// Package resources holds the flag and backend plumbing shared by the verb
// commands that act on an entity.
package resources

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/output/tableview"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/entity"
	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/theme"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

const (
	SearchFlagName   = "search"
	PageFlagName     = "page"
	PageSizeFlagName = "page-size"

	FileFlagName  = "file"
	FileFlagShort = "f"
)

// Context bundles what a resource command needs once its flags are parsed.
type Context struct {
	Helper cmd.Helper
	Def    *entity.Definition
	API    helpers.API
	Ops    entity.Ops
	Config config.Hook
	Logger *slog.Logger
	Output common.OutputFormat
}

// Resolve looks up the resource named by the first positional argument and
// builds the backend for it.
func Resolve(helper cmd.Helper) (*Context, error) {
	def, err := Definition(helper)
	if err != nil {
		return nil, err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return nil, err
	}
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return nil, err
	}
	api, err := helper.GetBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Context{
		Helper: helper,
		Def:    def,
		API:    api,
		Ops:    def.Bind(api),
		Config: cfg,
		Logger: logger,
		Output: outType,
	}, nil
}

// Definition resolves the first positional argument to an entity.
func Definition(helper cmd.Helper) (*entity.Definition, error) {
	args := helper.GetArgs()
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, &cmd.ConfigurationError{
			Err: fmt.Errorf("a resource is required, must be one of %s", strings.Join(entity.Names(), ", ")),
		}
	}
	def, err := entity.Lookup(args[0])
	if err != nil {
		return nil, &cmd.ConfigurationError{Err: err}
	}
	return def, nil
}

// Key returns the positional argument at index i, which identifies a record
// of def.
func Key(helper cmd.Helper, def *entity.Definition, i int) (string, error) {
	args := helper.GetArgs()
	if def.ReadOnly {
		return "", &cmd.ConfigurationError{Err: fmt.Errorf("%s: %w", def.Plural, entity.ErrReadOnly)}
	}
	if len(args) <= i || strings.TrimSpace(args[i]) == "" {
		return "", &cmd.ConfigurationError{
			Err: fmt.Errorf("%s not found: a %s key is required", def.Name, def.Name),
		}
	}
	return strings.TrimSpace(args[i]), nil
}

// Locale returns the collation language of the profile.
func (c *Context) Locale() language.Tag {
	tag, err := language.Parse(c.Config.GetString(config.ListLocaleConfigPath))
	if err != nil {
		return language.English
	}
	return tag
}

// TableOptions prepends the palette of the command context to opts.
func (c *Context) TableOptions(opts ...tableview.Option) []tableview.Option {
	return append([]tableview.Option{tableview.WithPalette(theme.FromContext(c.Helper.GetContext()))}, opts...)
}

// Printer returns the structured printer for json and yaml output.
func (c *Context) Printer() (cli.PrintFlusher, error) {
	return cli.Format(c.Output.String(), c.Helper.GetStreams().Out)
}

// CompleteResources completes resource names for the first positional argument.
func CompleteResources(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return entity.Names(), cobra.ShellCompDirectiveNoFileComp
}

// AddListFlags registers the search, selector and paging flags.
func AddListFlags(c *cobra.Command) {
	c.Flags().String(SearchFlagName, "", "Case insensitive search over the searchable columns.")
	for _, sel := range selectors() {
		c.Flags().String(sel.Flag, listing.SelectorAll,
			fmt.Sprintf("Only show records of this %s (%q for every value).", strings.ToLower(sel.Label), listing.SelectorAll))
	}
	c.Flags().Int(PageFlagName, 1, "Page to show.")
	c.Flags().Int(PageSizeFlagName, listing.DefaultRowsPerPage,
		fmt.Sprintf("Rows per page, 0 shows every record.\n (config path = '%s')", config.ListPageSizeConfigPath))
}

// BindListFlags binds the page size flag to the profile configuration.
func BindListFlags(c *cobra.Command, cfg config.Hook) error {
	if f := c.Flags().Lookup(PageSizeFlagName); f != nil {
		return cfg.BindFlag(config.ListPageSizeConfigPath, f)
	}
	return nil
}

// Criteria reads the search and selector flags for def. Setting a selector
// flag the resource does not support is a configuration error.
func Criteria(c *cobra.Command, def *entity.Definition) (listing.Criteria, error) {
	criteria := listing.Criteria{Selectors: map[string]string{}}
	if f := c.Flags().Lookup(SearchFlagName); f != nil {
		criteria.Search = strings.TrimSpace(f.Value.String())
	}
	for _, sel := range selectors() {
		f := c.Flags().Lookup(sel.Flag)
		if f == nil || !f.Changed {
			continue
		}
		own, ok := selectorByFlag(def, sel.Flag)
		if !ok {
			return criteria, &cmd.ConfigurationError{
				Err: fmt.Errorf("--%s is not a filter of %s", sel.Flag, def.Plural),
			}
		}
		criteria = criteria.WithSelector(own.Name, f.Value.String())
	}
	return criteria, nil
}

// View builds a listing view from the paging flags and criteria.
func View(c *cobra.Command, def *entity.Definition, cfg config.Hook, criteria listing.Criteria) (*listing.View, int, error) {
	size := cfg.GetIntOrElse(config.ListPageSizeConfigPath, listing.DefaultRowsPerPage)
	if size < 0 {
		return nil, 0, &cmd.ConfigurationError{Err: fmt.Errorf("--%s must not be negative", PageSizeFlagName)}
	}
	page, err := c.Flags().GetInt(PageFlagName)
	if err != nil {
		page = 1
	}
	if page < 1 {
		return nil, 0, &cmd.ConfigurationError{Err: fmt.Errorf("--%s must be at least 1", PageFlagName)}
	}
	view := listing.NewView(def.Matcher(), size)
	view.SetCriteria(criteria)
	return view, page, nil
}

// AddPayloadFlags registers every payload flag of every entity plus the
// payload file flag. Each command checks the flags against its resource.
func AddPayloadFlags(c *cobra.Command) {
	c.Flags().StringP(FileFlagName, FileFlagShort, "", "YAML or JSON file with the record fields.")
	for _, pf := range payloadFields() {
		owners := resourcesWithField(pf.Flag)
		usage := fmt.Sprintf("%s (%s).", pf.Usage, owners[0])
		if len(owners) > 1 {
			usage = fmt.Sprintf("Value of the %s field (%s).", pf.Flag, strings.Join(owners, ", "))
		}
		if pf.List {
			c.Flags().StringSlice(pf.Flag, nil, usage+" Comma separated.")
			continue
		}
		c.Flags().String(pf.Flag, "", usage)
	}
}

// Overrides collects the payload values of def from the payload file and the
// flags. Flags win over the file.
func Overrides(c *cobra.Command, def *entity.Definition) (map[string]any, error) {
	overrides := map[string]any{}

	if path, _ := c.Flags().GetString(FileFlagName); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &cmd.ConfigurationError{Err: fmt.Errorf("reading payload file: %w", err)}
		}
		doc, err := entity.ParsePayload(data)
		if err != nil {
			return nil, &cmd.ConfigurationError{Err: err}
		}
		overrides = def.Overrides(doc)
	}

	own := map[string]entity.PayloadField{}
	for _, pf := range def.Payload {
		own[pf.Flag] = pf
	}
	for _, pf := range payloadFields() {
		f := c.Flags().Lookup(pf.Flag)
		if f == nil || !f.Changed {
			continue
		}
		field, ok := own[pf.Flag]
		if !ok {
			return nil, &cmd.ConfigurationError{
				Err: fmt.Errorf("--%s is not a field of %s", pf.Flag, def.Plural),
			}
		}
		if field.List {
			values, _ := c.Flags().GetStringSlice(pf.Flag)
			overrides[pf.Flag] = values
			continue
		}
		overrides[pf.Flag] = f.Value.String()
	}
	return overrides, nil
}

func selectors() []entity.Selector {
	seen := map[string]bool{}
	var out []entity.Selector
	for _, d := range entity.All() {
		for _, s := range d.Selectors {
			if !seen[s.Flag] {
				seen[s.Flag] = true
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Flag < out[j].Flag })
	return out
}

func selectorByFlag(def *entity.Definition, flag string) (entity.Selector, bool) {
	for _, s := range def.Selectors {
		if s.Flag == flag {
			return s, true
		}
	}
	return entity.Selector{}, false
}

func payloadFields() []entity.PayloadField {
	seen := map[string]bool{}
	var out []entity.PayloadField
	for _, d := range entity.All() {
		for _, pf := range d.Payload {
			if !seen[pf.Flag] {
				seen[pf.Flag] = true
				out = append(out, pf)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Flag < out[j].Flag })
	return out
}

func resourcesWithField(flag string) []string {
	var out []string
	for _, d := range entity.All() {
		for _, pf := range d.Payload {
			if pf.Flag == flag {
				out = append(out, d.Plural)
				break
			}
		}
	}
	return out
}
