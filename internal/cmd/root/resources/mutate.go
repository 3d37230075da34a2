package resources

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rbacctl/rbacctl/internal/cmd"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/output/tableview"
	"github.com/rbacctl/rbacctl/internal/entity"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/record"
)

// streamNotifier writes gateway notifications to the error stream so
// stdout only carries results.
type streamNotifier struct {
	out io.Writer
}

func (n streamNotifier) Success(msg string) {
	fmt.Fprintln(n.out, msg)
}

// Error is a no-op: the returned error is reported by the root command.
func (n streamNotifier) Error(string, error) {}

// Gateway returns a mutation gateway reporting to the command streams.
func (c *Context) Gateway() *mutation.Gateway {
	return mutation.NewGateway(streamNotifier{out: c.Helper.GetStreams().ErrOut}, c.Logger, nil)
}

// MutationError converts gateway and entity errors into command errors.
// Validation problems are listed one field per line.
func MutationError(helper cmd.Helper, def *entity.Definition, err error) error {
	if err == nil {
		return nil
	}
	var verr *mutation.ValidationError
	switch {
	case errors.As(err, &verr):
		lines := make([]string, 0, len(verr.Fields))
		for _, name := range verr.FieldNames() {
			lines = append(lines, fmt.Sprintf("  --%s %s", name, verr.Fields[name]))
		}
		return &cmd.ConfigurationError{
			Err: fmt.Errorf("invalid %s:\n%s", def.Name, strings.Join(lines, "\n")),
		}
	case errors.Is(err, entity.ErrReadOnly):
		return &cmd.ConfigurationError{Err: fmt.Errorf("%s: %w", def.Plural, err)}
	case errors.Is(err, mutation.ErrCancelled):
		return cmd.PrepareExecutionErrorMsg(helper, "delete cancelled")
	default:
		return cmd.PrepareExecutionErrorFromErr(helper, err, "resource", def.Name)
	}
}

// RenderResult prints the record returned by a create or update.
func (c *Context) RenderResult(res record.Record) error {
	if res == nil {
		res = record.Record{}
	}
	if c.Output != common.TEXT {
		printer, err := c.Printer()
		if err != nil {
			return err
		}
		defer printer.Flush()
		return tableview.RenderForFormat(c.Helper, c.Output, printer, c.Helper.GetStreams(), export.Table{}, res)
	}
	if len(res) == 0 {
		return nil
	}
	return tableview.RenderPairs(c.Helper.GetStreams(), entity.Detail(res),
		c.TableOptions(tableview.WithTitle(c.Def.Describe(res)))...)
}
