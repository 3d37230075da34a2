package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/spf13/cobra"
)

type deleteContextKey string

const deleteAutoApproveContextKey deleteContextKey = "rbacctl-delete-auto-approve"

// SetDeleteAutoApprove stores the --approve flag state.
func SetDeleteAutoApprove(cmd *cobra.Command, approved bool) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, deleteAutoApproveContextKey, approved))
}

// DeleteAutoApproveEnabled reports whether the user opted to skip confirmation prompts.
func DeleteAutoApproveEnabled(helper Helper) bool {
	if helper == nil || helper.GetCmd() == nil {
		return false
	}
	ctx := helper.GetCmd().Context()
	if ctx == nil {
		return false
	}
	approved, _ := ctx.Value(deleteAutoApproveContextKey).(bool)
	return approved
}

// DeleteConfirmer prompts on the helper streams unless --approve was given.
// Only the literal answer "yes" accepts.
func DeleteConfirmer(helper Helper, warnings ...string) mutation.Confirmer {
	return mutation.ConfirmFunc(func(ctx context.Context, description string) (bool, error) {
		if DeleteAutoApproveEnabled(helper) {
			return true, nil
		}
		return promptDelete(ctx, helper, description, warnings)
	})
}

// ConfirmDelete prompts the user to confirm a destructive delete operation
// unless --approve was provided.
func ConfirmDelete(helper Helper, description string, warnings ...string) error {
	ok, err := DeleteConfirmer(helper, warnings...).Confirm(helper.GetContext(), description)
	if err != nil || !ok {
		return PrepareExecutionErrorMsg(helper, "delete cancelled")
	}
	return nil
}

func promptDelete(ctx context.Context, helper Helper, description string, warnings []string) (bool, error) {
	streams := helper.GetStreams()
	fmt.Fprintf(streams.Out, "\nYou are about to delete %s\n", description)

	for _, warning := range warnings {
		if strings.TrimSpace(warning) != "" {
			fmt.Fprintln(streams.Out, warning)
		}
	}

	fmt.Fprint(streams.Out, "\nDo you want to continue? Type 'yes' to confirm: ")

	var input io.Reader = streams.In
	if f, ok := input.(*os.File); ok && f.Fd() == os.Stdin.Fd() {
		if tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0); err == nil {
			defer tty.Close()
			input = tty
		}
	}

	reader := bufio.NewReader(input)
	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			errCh <- err
			return
		}
		lineCh <- line
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-sigCh:
		return false, nil
	case <-errCh:
		return false, nil
	case line := <-lineCh:
		return strings.ToLower(strings.TrimSpace(line)) == "yes", nil
	}
}
