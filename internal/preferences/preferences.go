// Package preferences persists the appearance settings of the interactive
// browser in the profile configuration.
package preferences

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/rbacctl/rbacctl/internal/config"
)

// ConfigPath is the profile sub tree holding the preferences.
const ConfigPath = "preferences"

type Key string

const (
	Theme        Key = "theme"
	FontSize     Key = "font-size"
	PrimaryColor Key = "primary-color"
	Animation    Key = "animation"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	FontSmall = "small"
	FontBase  = "base"
	FontLarge = "large"
)

// PrimaryColors is the fixed palette of accent colors.
var PrimaryColors = []string{"blue", "green", "purple", "orange", "red", "teal"}

type spec struct {
	def     string
	allowed []string
}

var table = map[Key]spec{
	Theme:        {def: ThemeSystem, allowed: []string{ThemeLight, ThemeDark, ThemeSystem}},
	FontSize:     {def: FontBase, allowed: []string{FontSmall, FontBase, FontLarge}},
	PrimaryColor: {def: "blue", allowed: PrimaryColors},
	Animation:    {def: "true", allowed: []string{"true", "false"}},
}

// Keys returns every preference key in display order.
func Keys() []Key {
	return []Key{Theme, FontSize, PrimaryColor, Animation}
}

// ParseKey resolves a key name, accepting underscores for dashes.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if _, ok := table[k]; !ok {
		names := make([]string, 0, len(table))
		for _, key := range Keys() {
			names = append(names, string(key))
		}
		return "", fmt.Errorf("unknown preference %q, must be one of %s", s, strings.Join(names, ", "))
	}
	return k, nil
}

// Default returns the default value of k.
func Default(k Key) string {
	return table[k].def
}

// Allowed returns the accepted values of k.
func Allowed(k Key) []string {
	return append([]string{}, table[k].allowed...)
}

// Validate normalizes value for k or reports why it is not accepted.
func Validate(k Key, value string) (string, error) {
	s, ok := table[k]
	if !ok {
		return "", fmt.Errorf("unknown preference %q", k)
	}
	v := strings.ToLower(strings.TrimSpace(value))
	if k == Animation {
		if b, err := strconv.ParseBool(v); err == nil {
			v = strconv.FormatBool(b)
		}
	}
	if !slices.Contains(s.allowed, v) {
		return "", fmt.Errorf("invalid %s %q, allowed: %s", k, value, strings.Join(s.allowed, ", "))
	}
	return v, nil
}

// Preferences is a resolved snapshot.
type Preferences struct {
	Theme        string `json:"theme" yaml:"theme"`
	FontSize     string `json:"font-size" yaml:"font-size"`
	PrimaryColor string `json:"primary-color" yaml:"primary-color"`
	Animation    bool   `json:"animation" yaml:"animation"`
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Preferences {
	return Preferences{Theme: ThemeSystem, FontSize: FontBase, PrimaryColor: "blue", Animation: true}
}

// Store reads and writes preferences through a profile configuration. Stored
// values that fail validation read as the default.
type Store struct {
	mu  sync.Mutex
	cfg config.Hook
}

func NewStore(cfg config.Hook) *Store {
	return &Store{cfg: cfg}
}

func path(k Key) string {
	return ConfigPath + "." + string(k)
}

// Get returns the value of k.
func (s *Store) Get(k Key) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(k)
}

func (s *Store) get(k Key) string {
	if s.cfg == nil || !s.cfg.IsSet(path(k)) {
		return Default(k)
	}
	v, err := Validate(k, fmt.Sprint(s.cfg.Get(path(k))))
	if err != nil {
		return Default(k)
	}
	return v
}

// Load returns every preference.
func (s *Store) Load() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Preferences{
		Theme:        s.get(Theme),
		FontSize:     s.get(FontSize),
		PrimaryColor: s.get(PrimaryColor),
		Animation:    s.get(Animation) == "true",
	}
}

// Set validates value and persists it. The last write wins.
func (s *Store) Set(k Key, value string) error {
	v, err := Validate(k, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return fmt.Errorf("no configuration to store preferences in")
	}
	if k == Animation {
		s.cfg.Set(path(k), v == "true")
	} else {
		s.cfg.SetString(path(k), v)
	}
	return s.cfg.Save()
}
