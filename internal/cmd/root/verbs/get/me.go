package get

import (
	"fmt"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/util/i18n"
	"github.com/rbacctl/rbacctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

var (
	meShort = i18n.T("root.verbs.get.me.meShort", "Show the display name of the current session")
	meLong  = normalizers.LongDesc(i18n.T("root.verbs.get.me.meLong",
		`Asks the backend for the current session. Without a session the name
claim of the configured token is used, and "User" when there is none.`))
	meExamples = normalizers.Examples(i18n.T("root.verbs.get.me.meExamples",
		fmt.Sprintf(`
		%[1]s get me
		%[1]s get me -o json
		`, meta.CLIName)))
)

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "me",
		Short:   meShort,
		Long:    meLong,
		Example: meExamples,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runMe(cmd.BuildHelper(c, args))
		},
	}
}

func runMe(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	api, err := helper.GetBackend(cfg, logger)
	if err != nil {
		return err
	}

	name, err := api.GetSessionAPI().CurrentUser(helper.GetContext())
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}

	out := helper.GetStreams().Out
	if outType == common.TEXT {
		_, err := fmt.Fprintln(out, name)
		return err
	}
	printer, err := cli.Format(outType.String(), out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(map[string]string{"displayName": name})
	return nil
}
