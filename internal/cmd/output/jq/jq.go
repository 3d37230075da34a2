// Package jq filters structured command output with jq expressions.
package jq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/itchyny/gojq"
	"github.com/mattn/go-isatty"
	cmdpkg "github.com/rbacctl/rbacctl/internal/cmd"
	cmdcommon "github.com/rbacctl/rbacctl/internal/cmd/common"
	"github.com/rbacctl/rbacctl/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	FlagName               = cmdcommon.JQFlagName
	ColorFlagName          = "jq-color"
	RawOutputFlagName      = "jq-raw-output"
	RawOutputFlagShort     = "r"
	ColorEnabledConfigPath = "jq.color.enabled"
	ColorThemeConfigPath   = "jq.color.theme"
	DefaultTheme           = "friendly"
)

var queryCache sync.Map

type Settings struct {
	Filter    string
	ColorMode cmdcommon.ColorMode
	Theme     string
	RawOutput bool
}

// AddFlags registers the jq flags on a command that prints records.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(FlagName, "", "Filter JSON or YAML output with a jq expression")

	jqColor := cmdpkg.NewEnum([]string{
		cmdcommon.ColorModeAuto.String(),
		cmdcommon.ColorModeAlways.String(),
		cmdcommon.ColorModeNever.String(),
	}, cmdcommon.DefaultColorMode)
	flags.Var(jqColor, ColorFlagName, fmt.Sprintf(`Controls colorized output for jq filter results.
- Config path: [ %s ]
- Allowed    : [ auto|always|never ]`, ColorEnabledConfigPath))

	flags.BoolP(RawOutputFlagName, RawOutputFlagShort, false,
		"Output string jq results without JSON quotes (like jq -r)")
}

// BindFlags binds the color flag to its config path.
func BindFlags(cfg config.Hook, flags *pflag.FlagSet) error {
	if cfg == nil || flags == nil {
		return nil
	}
	if f := flags.Lookup(ColorFlagName); f != nil {
		return cfg.BindFlag(ColorEnabledConfigPath, f)
	}
	return nil
}

// ResolveSettings reads the jq flags of command. Commands without --jq never
// filter.
func ResolveSettings(command *cobra.Command, cfg config.Hook) (Settings, error) {
	settings := Settings{Theme: DefaultTheme, ColorMode: cmdcommon.ColorModeAuto}
	if command == nil || command.Flags().Lookup(FlagName) == nil {
		return settings, nil
	}
	flags := command.Flags()

	filter, err := flags.GetString(FlagName)
	if err != nil {
		return Settings{}, err
	}
	filter = strings.TrimSpace(filter)
	if flags.Changed(FlagName) && filter == "" {
		filter = "."
	}
	settings.Filter = filter

	if flags.Lookup(RawOutputFlagName) != nil {
		if settings.RawOutput, err = flags.GetBool(RawOutputFlagName); err != nil {
			return Settings{}, err
		}
	}

	colorValue := ""
	if cfg != nil {
		colorValue = cfg.GetString(ColorEnabledConfigPath)
		if theme := strings.TrimSpace(cfg.GetString(ColorThemeConfigPath)); theme != "" {
			settings.Theme = theme
		}
	} else if f := flags.Lookup(ColorFlagName); f != nil {
		colorValue = f.Value.String()
	}
	mode, err := cmdcommon.ColorModeStringToIota(strings.ToLower(strings.TrimSpace(colorValue)))
	if err != nil {
		return Settings{}, &cmdpkg.ConfigurationError{Err: err}
	}
	settings.ColorMode = mode
	return settings, nil
}

func HasFilter(settings Settings) bool {
	return strings.TrimSpace(settings.Filter) != ""
}

func ValidateOutputFormat(outType cmdcommon.OutputFormat, settings Settings) error {
	if settings.RawOutput {
		if !HasFilter(settings) {
			return &cmdpkg.ConfigurationError{
				Err: fmt.Errorf("--%s requires --%s", RawOutputFlagName, FlagName),
			}
		}
		if outType != cmdcommon.JSON {
			return &cmdpkg.ConfigurationError{
				Err: fmt.Errorf("--%s is only supported with --output json", RawOutputFlagName),
			}
		}
		return nil
	}
	if !HasFilter(settings) || outType == cmdcommon.JSON || outType == cmdcommon.YAML {
		return nil
	}
	return &cmdpkg.ConfigurationError{
		Err: fmt.Errorf("--%s is only supported with --output json or --output yaml", FlagName),
	}
}

// ApplyToRaw filters raw. When the result was already written to out, for raw
// or colorized output, handled is true and the caller prints nothing.
func ApplyToRaw(raw any, outType cmdcommon.OutputFormat, settings Settings, out io.Writer) (any, bool, error) {
	if !HasFilter(settings) {
		return raw, false, nil
	}
	if err := ValidateOutputFormat(outType, settings); err != nil {
		return nil, false, err
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode output before applying jq filter: %w", err)
	}

	results, err := evaluate(body, settings.Filter)
	if err != nil {
		return nil, false, err
	}

	if settings.RawOutput {
		return nil, true, writeRawResults(results, out)
	}

	filtered, err := encodeResults(results)
	if err != nil {
		return nil, false, err
	}

	if outType == cmdcommon.JSON && ShouldUseColor(settings.ColorMode, out) {
		printable := MaybeColorizeOutput(filtered, BodyToPrintable(filtered), settings.Theme)
		_, err := fmt.Fprintln(out, strings.TrimRight(printable, "\n"))
		return nil, true, err
	}

	var payload any
	if err := json.Unmarshal(filtered, &payload); err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// ApplyFilter runs filter over a JSON body and returns the JSON encoded result.
// Several results are returned as an array.
func ApplyFilter(body []byte, filter string) ([]byte, error) {
	results, err := evaluate(body, filter)
	if err != nil {
		return nil, err
	}
	return encodeResults(results)
}

func evaluate(body []byte, filter string) ([]any, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		filter = "."
	}
	if len(body) == 0 {
		return nil, errors.New("output is empty, cannot apply jq filter")
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}

	code, err := compile(filter)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(payload)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func compile(filter string) (*gojq.Code, error) {
	if cached, ok := queryCache.Load(filter); ok {
		return cached.(*gojq.Code), nil
	}
	parsed, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	queryCache.Store(filter, code)
	return code, nil
}

func encodeResults(results []any) ([]byte, error) {
	var v any
	switch len(results) {
	case 0:
		v = nil
	case 1:
		v = results[0]
	default:
		v = results
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filtered result: %w", err)
	}
	return b, nil
}

func writeRawResults(results []any, out io.Writer) error {
	for _, result := range results {
		line, ok := result.(string)
		if !ok {
			encoded, err := json.Marshal(result)
			if err != nil {
				return fmt.Errorf("failed to encode filtered result: %w", err)
			}
			line = string(encoded)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// BodyToPrintable indents a JSON body; anything else is returned as is.
func BodyToPrintable(body []byte) string {
	var js any
	if err := json.Unmarshal(body, &js); err != nil {
		return string(body)
	}
	formatted, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(formatted)
}

var terminalDetector = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func ShouldUseColor(mode cmdcommon.ColorMode, out io.Writer) bool {
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	default:
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			return false
		}
		f, ok := out.(interface{ Fd() uintptr })
		return ok && terminalDetector(f.Fd())
	}
}

// MaybeColorizeOutput highlights objects and arrays with chroma.
func MaybeColorizeOutput(raw []byte, formatted, theme string) string {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return formatted
	}
	switch payload.(type) {
	case map[string]any, []any:
	default:
		return formatted
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		return formatted
	}
	iterator, err := lexer.Tokenise(nil, formatted)
	if err != nil {
		return formatted
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return formatted
	}
	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return formatted
	}
	return buf.String()
}
