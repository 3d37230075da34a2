package del

import (
	"context"
	"fmt"

	cmdpkg "github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/root/resources"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.Delete
)

var (
	deleteUse = Verb.String() + " <resource> <key...>"

	deleteShort = i18n.T("root.verbs.delete.deleteShort", "Delete records")

	deleteLong = normalizers.LongDesc(i18n.T("root.verbs.delete.deleteLong",
		`Use delete to remove one or more records of a resource.

Every delete asks for confirmation; type "yes" to accept. Pass --approve to
skip the prompt in scripts. Deleting stops at the first failure.`))

	deleteExamples = normalizers.Examples(i18n.T("root.verbs.delete.deleteExamples",
		fmt.Sprintf(`
		# Delete a role
		%[1]s delete role R_AUDIT
		# Delete a user grant without prompting
		%[1]s delete user u-100/APP_HR_1/R_ADMIN --approve
		`, meta.CLIName)))
)

func NewDeleteCmd() (*cobra.Command, error) {
	var autoApprove bool

	c := &cobra.Command{
		Use:               deleteUse,
		Short:             deleteShort,
		Long:              deleteLong,
		Example:           deleteExamples,
		Aliases:           []string{"d", "del", "rm"},
		ValidArgsFunction: resources.CompleteResources,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			cmdpkg.SetDeleteAutoApprove(c, autoApprove)
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			rc, err := resources.Resolve(helper)
			if err != nil {
				return err
			}
			return run(rc)
		},
	}

	c.Flags().BoolVar(&autoApprove, common.ApproveFlagName, false,
		"Skip confirmation prompts for delete operations (not configurable)")
	return c, nil
}

func run(rc *resources.Context) error {
	if _, err := resources.Key(rc.Helper, rc.Def, 1); err != nil {
		return err
	}

	ctx := rc.Helper.GetContext()
	gateway := rc.Gateway()
	confirmer := cmdpkg.DeleteConfirmer(rc.Helper)

	for _, key := range rc.Helper.GetArgs()[1:] {
		current, err := rc.Ops.Get(ctx, key)
		if err != nil {
			return cmdpkg.PrepareExecutionErrorFromErr(rc.Helper, err, "resource", rc.Def.Name, "key", key)
		}
		err = gateway.Delete(ctx, mutation.Op{Entity: rc.Def.Name, Key: key}, rc.Def.Describe(current), confirmer, rc.Ops.Delete)
		if err != nil {
			return resources.MutationError(rc.Helper, rc.Def, err)
		}
	}
	return nil
}
