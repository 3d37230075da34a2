package meta

const (
	CLIName = "rbacctl"
	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "RBACCTL"
)
