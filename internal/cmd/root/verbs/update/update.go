package update

import (
	"context"
	"fmt"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/root/resources"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.Update
)

var (
	updateUse = Verb.String() + " <resource> <key>"

	updateShort = i18n.T("root.verbs.update.updateShort", "Update a record")

	updateLong = normalizers.LongDesc(i18n.T("root.verbs.update.updateLong",
		`Use update to change fields of an existing record.

The current record is fetched and the given fields are merged onto it, so only
the changed fields need to be passed. Key fields cannot be changed.`))

	updateExamples = normalizers.Examples(i18n.T("root.verbs.update.updateExamples",
		fmt.Sprintf(`
		# Rename a role
		%[1]s update role R_ADMIN --name Administrators
		# Deactivate an application
		%[1]s update application APP_HR_1 --active false
		# Replace the functions granted by an rbac entry
		%[1]s update rbac RBAC_1 --functions F_VIEW
		`, meta.CLIName)))
)

func NewUpdateCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:               updateUse,
		Short:             updateShort,
		Long:              updateLong,
		Example:           updateExamples,
		Aliases:           []string{"u", "edit"},
		Args:              cobra.MaximumNArgs(2),
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

	resources.AddPayloadFlags(c)
	return c, nil
}

func run(rc *resources.Context) error {
	key, err := resources.Key(rc.Helper, rc.Def, 1)
	if err != nil {
		return err
	}
	overrides, err := resources.Overrides(rc.Helper.GetCmd(), rc.Def)
	if err != nil {
		return err
	}
	if len(overrides) == 0 {
		return &cmd.ConfigurationError{Err: fmt.Errorf("nothing to update, pass at least one field flag or --%s", resources.FileFlagName)}
	}

	ctx := rc.Helper.GetContext()
	current, err := rc.Ops.Get(ctx, key)
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(rc.Helper, err, "resource", rc.Def.Name, "key", key)
	}
	payload, err := rc.Def.BuildPayload(current, overrides, true)
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}

	res, err := rc.Gateway().Update(ctx, mutation.Op{
		Entity:     rc.Def.Name,
		Key:        key,
		Payload:    payload,
		Validators: rc.Def.Validators,
	}, rc.Ops.Update)
	if err != nil {
		return resources.MutationError(rc.Helper, rc.Def, err)
	}
	return rc.RenderResult(res)
}
