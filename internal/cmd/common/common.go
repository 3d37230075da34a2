package common

import "fmt"

// OutputFormat enumerates the values accepted by --output.
type OutputFormat int

const (
	JSON OutputFormat = iota
	YAML
	TEXT
)

const (
	DefaultOutputFormat = "text"
	OutputFlagName      = "output"
	OutputFlagShort     = "o"
	OutputConfigPath    = OutputFlagName

	ProfileFlagName  = "profile"
	ProfileFlagShort = "p"

	ConfigFilePathFlagName = "config-file"

	LogLevelFlagName   = "log-level"
	DefaultLogLevel    = "error"
	LogLevelConfigPath = LogLevelFlagName

	LogFileFlagName = "log-file"

	BaseURLFlagName = "base-url"
	TokenFlagName   = "token"

	InteractiveFlagName  = "interactive"
	InteractiveFlagShort = "i"

	JQFlagName = "jq"

	ApproveFlagName = "approve"
)

func (of OutputFormat) String() string {
	return [...]string{"json", "yaml", "text"}[of]
}

func OutputFormatStringToIota(format string) (OutputFormat, error) {
	switch format {
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	case "text", "":
		return TEXT, nil
	default:
		return TEXT, fmt.Errorf("invalid output format %q, must be one of %v", format, []string{"json", "yaml", "text"})
	}
}

// LogLevels lists the accepted --log-level values.
func LogLevels() []string {
	return []string{"trace", "debug", "info", "warn", "error"}
}

// ColorMode enumerates the values accepted by --jq-color.
type ColorMode int

const (
	ColorModeAuto ColorMode = iota
	ColorModeAlways
	ColorModeNever
)

const DefaultColorMode = "auto"

func (c ColorMode) String() string {
	return [...]string{"auto", "always", "never"}[c]
}

func ColorModeStringToIota(mode string) (ColorMode, error) {
	switch mode {
	case "auto", "":
		return ColorModeAuto, nil
	case "always":
		return ColorModeAlways, nil
	case "never":
		return ColorModeNever, nil
	default:
		return ColorModeAuto, fmt.Errorf("invalid color mode %q, must be one of %v", mode, []string{"auto", "always", "never"})
	}
}
