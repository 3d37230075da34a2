package get

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/output/tableview"
	"github.com/rbacctl/rbacctl/internal/cmd/root/resources"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/entity"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/record"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.Get

	AppFlagName  = "app"
	RoleFlagName = "role"

	assignedFunctionsKey = "assigned-functions"
	facilitiesKey        = "facilities"
)

var (
	getUse = Verb.String() + " <resource> <key>"

	getShort = i18n.T("root.verbs.get.getShort", "Retrieve one record")

	getLong = normalizers.LongDesc(i18n.T("root.verbs.get.getLong",
		`Use get to retrieve a single record of a resource by its key.

Users are identified by their auth code or by user-id/app-code/role-code.
Two lookups are not keyed by a record: "get rbac assigned-functions" lists the
function codes granted to a role and "get user facilities" lists facilities.`))

	getExamples = normalizers.Examples(i18n.T("root.verbs.get.getExamples",
		fmt.Sprintf(`
		# Retrieve an application
		%[1]s get application APP_HR_1
		# Retrieve a user grant by user, application and role
		%[1]s get user u-100/APP_HR_1/R_ADMIN -o json
		# Function codes granted to a role
		%[1]s get rbac assigned-functions --app APP_HR_1 --role R_ADMIN
		# Facilities of one user grant
		%[1]s get user facilities u-100 --app APP_HR_1 --role R_ADMIN
		# Display name of the current session
		%[1]s get me
		`, meta.CLIName)))
)

func NewGetCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:               getUse,
		Short:             getShort,
		Long:              getLong,
		Example:           getExamples,
		Aliases:           []string{"g"},
		Args:              cobra.MaximumNArgs(3),
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
			return run(rc)
		},
	}

	c.Flags().String(AppFlagName, "", "Application code for assigned-functions and facilities lookups.")
	c.Flags().String(RoleFlagName, "", "Role code for assigned-functions and facilities lookups.")

	c.AddCommand(newMeCmd())
	return c, nil
}

func run(rc *resources.Context) error {
	args := rc.Helper.GetArgs()
	if len(args) > 1 {
		switch {
		case rc.Def == entity.Rbac && args[1] == assignedFunctionsKey:
			return runAssignedFunctions(rc)
		case rc.Def == entity.User && args[1] == facilitiesKey:
			return runFacilities(rc)
		}
	}

	key, err := resources.Key(rc.Helper, rc.Def, 1)
	if err != nil {
		return err
	}
	rec, err := rc.Ops.Get(rc.Helper.GetContext(), key)
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(rc.Helper, err, "resource", rc.Def.Name, "key", key)
	}
	return renderRecord(rc, rec)
}

func renderRecord(rc *resources.Context, rec record.Record) error {
	if rc.Output == common.TEXT {
		return tableview.RenderPairs(rc.Helper.GetStreams(), entity.Detail(rec),
			rc.TableOptions(tableview.WithTitle(rc.Def.Describe(rec)))...)
	}
	return printRaw(rc, rec)
}

func printRaw(rc *resources.Context, raw any) error {
	printer, err := rc.Printer()
	if err != nil {
		return err
	}
	defer printer.Flush()
	return tableview.RenderForFormat(rc.Helper, rc.Output, printer, rc.Helper.GetStreams(), export.Table{}, raw)
}

// requiredFlag returns the trimmed value of a flag that must be set.
func requiredFlag(c *cobra.Command, name, lookup string) (string, error) {
	v, _ := c.Flags().GetString(name)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", &cmd.ConfigurationError{Err: fmt.Errorf("--%s is required for %s", name, lookup)}
	}
	return v, nil
}

func runAssignedFunctions(rc *resources.Context) error {
	c := rc.Helper.GetCmd()
	app, err := requiredFlag(c, AppFlagName, assignedFunctionsKey)
	if err != nil {
		return err
	}
	role, err := requiredFlag(c, RoleFlagName, assignedFunctionsKey)
	if err != nil {
		return err
	}

	codes, err := rc.API.GetRbacAPI().AssignedFunctionCodes(rc.Helper.GetContext(), app, role)
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(rc.Helper, err, "app", app, "role", role)
	}
	return renderCodes(rc, fmt.Sprintf("Functions assigned to %s in %s", role, app), "Function Code", codes)
}

func runFacilities(rc *resources.Context) error {
	args := rc.Helper.GetArgs()
	ctx := rc.Helper.GetContext()
	c := rc.Helper.GetCmd()

	if len(args) < 3 {
		all, err := rc.API.GetUserAPI().AvailableFacilities(ctx)
		if err != nil {
			return cmd.PrepareExecutionErrorFromErr(rc.Helper, err)
		}
		return renderCollection(rc, "Facilities", facilityColumns, all)
	}

	userID := args[2]
	app, _ := c.Flags().GetString(AppFlagName)
	role, _ := c.Flags().GetString(RoleFlagName)
	if app == "" && role == "" {
		grants, err := rc.API.GetUserAPI().GetByUserID(ctx, userID)
		if err != nil {
			return cmd.PrepareExecutionErrorFromErr(rc.Helper, err, "user", userID)
		}
		return renderCollection(rc, "Grants of "+userID, rc.Def.Columns, grants)
	}
	if app == "" || role == "" {
		return &cmd.ConfigurationError{
			Err: fmt.Errorf("--%s and --%s must be given together", AppFlagName, RoleFlagName),
		}
	}

	codes, err := rc.API.GetUserAPI().UserFacilities(ctx, userID, app, role)
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(rc.Helper, err, "user", userID, "app", app, "role", role)
	}
	return renderCodes(rc, fmt.Sprintf("Facilities of %s for %s in %s", userID, role, app), "Facility", codes)
}

var facilityColumns = []export.ColumnSpec{
	export.Column("Facility", record.Facility),
	export.Column("Name", record.FacilityName),
}

func renderCollection(rc *resources.Context, title string, columns []export.ColumnSpec, recs []record.Record) error {
	if recs == nil {
		recs = []record.Record{}
	}
	if rc.Output != common.TEXT {
		return printRaw(rc, recs)
	}
	t := export.Project(recs, columns)
	return tableview.Render(rc.Helper.GetStreams(), t, rc.TableOptions(tableview.WithTitle(title))...)
}

func renderCodes(rc *resources.Context, title, header string, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	if rc.Output != common.TEXT {
		return printRaw(rc, codes)
	}
	t := export.Table{Headers: []string{header}}
	for _, code := range codes {
		t.Rows = append(t.Rows, []string{code})
	}
	return tableview.Render(rc.Helper.GetStreams(), t, rc.TableOptions(tableview.WithTitle(title))...)
}
