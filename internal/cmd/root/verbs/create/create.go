package create

import (
	"context"
	"fmt"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/root/resources"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/entity"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.Create
)

var (
	createUse = Verb.String() + " <resource>"

	createShort = i18n.T("root.verbs.create.createShort", "Create a record")

	createLong = normalizers.LongDesc(i18n.T("root.verbs.create.createLong",
		`Use create to add a record to a resource.

Fields are given as flags or in a YAML or JSON payload file. Flags override the
file. The payload is validated before the backend is called.`))

	createExamples = normalizers.Examples(i18n.T("root.verbs.create.createExamples",
		fmt.Sprintf(`
		# Create an application
		%[1]s create application --code APP_HR_1 --name "Human Resources" --active true
		# Grant functions to a role
		%[1]s create rbac --app APP_HR_1 --role R_ADMIN --functions F_VIEW,F_EDIT
		# Create a user grant from a file
		%[1]s create user -f grant.yaml
		`, meta.CLIName)))
)

func NewCreateCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:               createUse,
		Short:             createShort,
		Long:              createLong,
		Example:           createExamples,
		Aliases:           []string{"c", "new"},
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
			return run(rc)
		},
	}

	resources.AddPayloadFlags(c)
	return c, nil
}

func run(rc *resources.Context) error {
	if rc.Def.ReadOnly {
		return resources.MutationError(rc.Helper, rc.Def, entity.ErrReadOnly)
	}
	overrides, err := resources.Overrides(rc.Helper.GetCmd(), rc.Def)
	if err != nil {
		return err
	}
	payload, err := rc.Def.BuildPayload(nil, overrides, false)
	if err != nil {
		return &cmd.ConfigurationError{Err: err}
	}

	res, err := rc.Gateway().Create(rc.Helper.GetContext(), mutation.Op{
		Entity:     rc.Def.Name,
		Payload:    payload,
		Validators: rc.Def.Validators,
	}, rc.Ops.Create)
	if err != nil {
		return resources.MutationError(rc.Helper, rc.Def, err)
	}
	return rc.RenderResult(res)
}
