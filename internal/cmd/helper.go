package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/build"
	"github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/cmd/root/verbs"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/rbacctl/rbacctl/internal/iostreams"
	"github.com/rbacctl/rbacctl/internal/log"
	"github.com/spf13/cobra"
)

type Helper interface {
	GetCmd() *cobra.Command
	GetArgs() []string
	GetVerb() (verbs.VerbValue, error)
	GetStreams() *iostreams.IOStreams
	GetConfig() (config.Hook, error)
	GetOutputFormat() (common.OutputFormat, error)
	IsInteractive() (bool, error)
	GetLogger() (*slog.Logger, error)
	GetBuildInfo() (*build.Info, error)
	GetContext() context.Context
	GetBackend(cfg config.Hook, logger *slog.Logger) (helpers.API, error)
}

type CommandHelper struct {
	// Cmd is a pointer to the command that is being executed
	Cmd *cobra.Command
	// Args are the arguments (not flags) passed to the command
	Args []string
}

func (r *CommandHelper) GetCmd() *cobra.Command {
	return r.Cmd
}

func (r *CommandHelper) GetArgs() []string {
	return r.Args
}

func (r *CommandHelper) GetBuildInfo() (*build.Info, error) {
	info, ok := r.GetContext().Value(build.InfoKey).(*build.Info)
	if !ok || info == nil {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("no build info configured"),
		}
	}
	return info, nil
}

func (r *CommandHelper) GetLogger() (*slog.Logger, error) {
	rv, ok := r.GetContext().Value(log.LoggerKey).(*slog.Logger)
	if !ok || rv == nil {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("no logger configured"),
		}
	}
	return rv, nil
}

func (r *CommandHelper) GetVerb() (verbs.VerbValue, error) {
	verbVal, ok := r.GetContext().Value(verbs.Verb).(verbs.VerbValue)
	if !ok {
		return "", PrepareExecutionErrorMsg(r, "no verb found in context")
	}
	return verbVal, nil
}

func (r *CommandHelper) GetStreams() *iostreams.IOStreams {
	if s, ok := r.GetContext().Value(iostreams.StreamsKey).(*iostreams.IOStreams); ok && s != nil {
		return s
	}
	return iostreams.GetOSIOStreams()
}

func (r *CommandHelper) GetConfig() (config.Hook, error) {
	cfg, ok := r.GetContext().Value(config.ConfigKey).(config.Hook)
	if !ok || cfg == nil {
		return nil, PrepareExecutionErrorMsg(r, "no config found in context")
	}
	return cfg, nil
}

func (r *CommandHelper) GetOutputFormat() (common.OutputFormat, error) {
	c, e := r.GetConfig()
	if e != nil {
		return common.TEXT, e
	}
	rv, e := common.OutputFormatStringToIota(c.GetString(common.OutputConfigPath))
	if e != nil {
		return common.TEXT, &ConfigurationError{Err: e}
	}
	return rv, nil
}

func (r *CommandHelper) IsInteractive() (bool, error) {
	flag := r.Cmd.Flags().Lookup(common.InteractiveFlagName)
	if flag == nil {
		flag = r.Cmd.InheritedFlags().Lookup(common.InteractiveFlagName)
	}
	if flag == nil {
		return false, nil
	}

	val := flag.Value.String()
	if val == "" {
		return false, nil
	}

	interactive, err := strconv.ParseBool(val)
	if err != nil {
		return false, &ConfigurationError{
			Err: fmt.Errorf("invalid value %q for --%s flag", val, common.InteractiveFlagName),
		}
	}
	return interactive, nil
}

func (r *CommandHelper) GetContext() context.Context {
	if ctx := r.Cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (r *CommandHelper) GetBackend(cfg config.Hook, logger *slog.Logger) (helpers.API, error) {
	factory, ok := r.GetContext().Value(helpers.FactoryKey).(helpers.Factory)
	if !ok || factory == nil {
		factory = helpers.DefaultFactory
	}
	api, err := factory(cfg, logger)
	if err != nil {
		return nil, PrepareExecutionErrorFromErr(r, err)
	}
	return api, nil
}

func BuildHelper(cmd *cobra.Command, args []string) Helper {
	return &CommandHelper{
		Cmd:  cmd,
		Args: args,
	}
}

// ConfigurationError represents errors that are a result of bad flags, combinations of
// flags, configuration settings, environment values, or other command usage issues.
type ConfigurationError struct {
	Err error
}

// ExecutionError represents errors that occur after a command has been validated and an
// unsuccessful result occurs. Network errors, server side errors, invalid credentials or
// responses are examples of ExecutionError types.
type ExecutionError struct {
	// friendly error message to display to the user
	Msg string
	// Err is the error that occurred during execution
	Err error
	// Optional attributes that can be used to provide additional context to the error
	Attrs []any
}

func (e *ConfigurationError) Error() string {
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// TryConvertErrorToAttrs json unmarshals an error string into alternating key
// value pairs as expected by slog.
func TryConvertErrorToAttrs(err error) []any {
	var result map[string]any
	if umError := json.Unmarshal([]byte(err.Error()), &result); umError != nil {
		return nil
	}
	attrs := make([]any, 0, len(result)*2)
	for k, v := range result {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// PrepareExecutionErrorWithHelper mirrors PrepareExecutionError but accepts a Helper.
// It ensures command usage/error output is silenced for runtime failures.
func PrepareExecutionErrorWithHelper(helper Helper, msg string, err error, attrs ...any) *ExecutionError {
	if helper == nil {
		return PrepareExecutionError(msg, err, nil, attrs...)
	}
	return PrepareExecutionError(msg, err, helper.GetCmd(), attrs...)
}

// PrepareExecutionErrorFromErr converts an arbitrary error into an ExecutionError while
// silencing usage/error output on the associated command. Backend errors keep their
// status code as an attribute and not found errors get a dedicated suggestion.
func PrepareExecutionErrorFromErr(helper Helper, err error, attrs ...any) *ExecutionError {
	if err == nil {
		return nil
	}
	var apiErr *helpers.APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "status", apiErr.StatusCode)
		if helpers.IsNotFound(apiErr) {
			attrs = append(attrs, "suggestion", "check the key with the list command")
		}
	}
	return PrepareExecutionErrorWithHelper(helper, err.Error(), err, attrs...)
}

// PrepareExecutionErrorMsg builds an ExecutionError from a message when a backing error
// is not already available.
func PrepareExecutionErrorMsg(helper Helper, msg string, attrs ...any) *ExecutionError {
	if msg == "" {
		return PrepareExecutionErrorWithHelper(helper, msg, errors.New("an unknown error occurred"), attrs...)
	}
	return PrepareExecutionErrorWithHelper(helper, msg, errors.New(msg), attrs...)
}

// PrepareExecutionError constructs an execution error and turns off error and
// usage output for the command.
func PrepareExecutionError(msg string, err error, cmd *cobra.Command, attrs ...any) *ExecutionError {
	if cmd != nil {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
	}

	return &ExecutionError{
		Msg:   msg,
		Err:   err,
		Attrs: attrs,
	}
}
