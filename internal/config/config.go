package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbacctl/rbacctl/internal/meta"
	"github.com/rbacctl/rbacctl/internal/util/viper"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

const (
	defaultConfigFileName = "config.yaml"

	BackendBaseURLConfigPath   = "backend.base-url"
	BackendTokenConfigPath     = "backend.token"
	BackendTimeoutConfigPath   = "backend.timeout"
	BackendRateLimitConfigPath = "backend.rate-limit"
	ListPageSizeConfigPath     = "list.page-size"
	ListLocaleConfigPath       = "list.locale"
	ListRefreshConfigPath      = "list.refresh-every"
	ExportDirConfigPath        = "export.dir"
	LogFileConfigPath          = "log-file"

	DefaultBackendBaseURL = "http://localhost:5000"
	DefaultBackendTimeout = "30s"
	DefaultRateLimit      = 10
	DefaultLocale         = "en"
)

// GetDefaultConfigPath returns $XDG_CONFIG_HOME/rbacctl, falling back to
// ~/.config/rbacctl.
func GetDefaultConfigPath() (string, error) {
	val, set := os.LookupEnv("XDG_CONFIG_HOME")
	if !set || val == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		val = filepath.Join(home, ".config")
	}
	return os.ExpandEnv(filepath.Join(val, meta.CLIName)), nil
}

func GetDefaultConfigFilePath() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(path, defaultConfigFileName), nil
}

// GetConfig loads the configuration for profile. An existing file is loaded
// strictly; the default path is created with defaults when missing; any other
// missing path is an error.
func GetConfig(path string, profile string, defaultConfigFilePath string) (*ProfiledConfig, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); err == nil {
		vip, err := viper.NewViperE(path)
		if err != nil {
			return nil, err
		}
		return BuildProfiledConfig(profile, path, vip), nil
	}

	if path != defaultConfigFilePath {
		return nil, fmt.Errorf("the provided config file path %q does not exist", path)
	}

	vip, err := viper.InitializeDefaultViper(getDefaultConfig(profile, path), path)
	if err != nil {
		return nil, err
	}
	return BuildProfiledConfig(profile, path, vip), nil
}

type Key struct{}

// ConfigKey stores the Hook on the command context.
var ConfigKey = Key{}

// Hook is the restricted view of the profile configuration that commands use.
type Hook interface {
	Save() error
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetIntOrElse(key string, orElse int) int
	GetStringSlice(key string) []string
	IsSet(key string) bool
	SetString(key string, value string)
	Set(k string, v any)
	Get(key string) any
	BindFlag(configPath string, f *pflag.Flag) error
	GetProfile() string
	GetPath() string
}

// ProfiledConfig scopes a viper instance to the sub tree of one profile.
type ProfiledConfig struct {
	*v.Viper
	subViper    *v.Viper
	ProfileName string
	Path        string
}

func (p *ProfiledConfig) GetProfile() string {
	return p.ProfileName
}

// Save copies the profile sub tree back into the main configuration and
// writes the file.
func (p *ProfiledConfig) Save() error {
	p.Viper.Set(p.ProfileName, p.subViper.AllSettings())
	return p.WriteConfig()
}

func (p *ProfiledConfig) GetString(key string) string {
	return p.subViper.GetString(key)
}

func (p *ProfiledConfig) GetBool(key string) bool {
	return p.subViper.GetBool(key)
}

func (p *ProfiledConfig) GetInt(key string) int {
	return p.subViper.GetInt(key)
}

func (p *ProfiledConfig) GetIntOrElse(key string, orElse int) int {
	if p.subViper.IsSet(key) {
		return p.subViper.GetInt(key)
	}
	return orElse
}

func (p *ProfiledConfig) GetStringSlice(key string) []string {
	return p.subViper.GetStringSlice(key)
}

func (p *ProfiledConfig) IsSet(key string) bool {
	return p.subViper.IsSet(key)
}

func (p *ProfiledConfig) Get(key string) any {
	return p.subViper.Get(key)
}

func (p *ProfiledConfig) BindFlag(configPath string, f *pflag.Flag) error {
	return p.subViper.BindPFlag(configPath, f)
}

func (p *ProfiledConfig) SetString(k string, v string) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) Set(k string, v any) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) GetPath() string {
	return p.Path
}

func BuildProfiledConfig(profile string, path string, mainv *v.Viper) *ProfiledConfig {
	subv := mainv.Sub(profile)
	if subv != nil {
		// Sub keeps the profile as a parent key, so env lookups already read
		// RBACCTL_<PROFILE>_<KEY> under the plain prefix.
		viper.ConfigureEnvVars(subv, meta.EnvPrefix)
	} else {
		// No data under the profile yet: bake the profile into the prefix so
		// profile scoped variables still resolve.
		subv = v.New()
		envPrefix := meta.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(profile, "-", "_"))
		viper.ConfigureEnvVars(subv, envPrefix)
	}

	return &ProfiledConfig{
		Viper:       mainv,
		ProfileName: profile,
		subViper:    subv,
		Path:        path,
	}
}

func getDefaultConfig(profileName, configFilePath string) map[string]any {
	configDir := filepath.Dir(configFilePath)
	defaultLogPath := filepath.Join(configDir, "logs", meta.CLIName+".log")

	return map[string]any{
		profileName: map[string]any{
			"output":    "text",
			"log-level": "error",
			"log-file":  defaultLogPath,
			"backend": map[string]any{
				"base-url":   DefaultBackendBaseURL,
				"timeout":    DefaultBackendTimeout,
				"rate-limit": DefaultRateLimit,
			},
			"list": map[string]any{
				"page-size": 10,
				"locale":    DefaultLocale,
			},
		},
	}
}
