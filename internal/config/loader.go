package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NOTEKEEPER"

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads a YAML configuration file, expands environment variables,
// parses it, applies environment overrides and fills defaults. It does
// not validate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.defaults()
	return &cfg, nil
}

// LoadOrDefault loads path when non-empty. Otherwise it searches the
// standard locations and falls back to Default plus environment overrides
// when no file exists. The returned string is the file used, if any.
func LoadOrDefault(path string) (*Config, string, error) {
	if path == "" {
		found, ok := ResolvePath()
		if !ok {
			cfg := &Config{}
			if err := ApplyEnv(cfg); err != nil {
				return nil, "", err
			}
			cfg.defaults()
			return cfg, "", nil
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// envOverrides lists the NOTEKEEPER_* variables. Empty values are ignored.
type envOverrides struct {
	HomeRoot       string `envconfig:"HOME_ROOT"`
	DefaultSubpath string `envconfig:"DEFAULT_SUBPATH"`
	Transport      string `envconfig:"TRANSPORT"`
	HTTPBind       string `envconfig:"HTTP_BIND"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	JournalPath    string `envconfig:"JOURNAL_PATH"`
	OTLPEndpoint   string `envconfig:"OTLP_ENDPOINT"`
}

// ApplyEnv overlays NOTEKEEPER_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("config: reading environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.HomeRoot, env.HomeRoot)
	set(&cfg.DefaultSubpath, env.DefaultSubpath)
	set(&cfg.Transport, env.Transport)
	set(&cfg.HTTP.Bind, env.HTTPBind)
	set(&cfg.Log.Level, env.LogLevel)
	set(&cfg.Log.Format, env.LogFormat)
	set(&cfg.Journal.Path, env.JournalPath)
	set(&cfg.Tracing.Endpoint, env.OTLPEndpoint)
	return nil
}

// ResolvePath searches for a config file in standard locations.
// Search order: $NOTEKEEPER_CONFIG → $XDG_CONFIG_HOME/notekeeper/notekeeper.yaml
// (or ~/.config/notekeeper/notekeeper.yaml) → ./notekeeper.yaml
func ResolvePath() (string, bool) {
	for _, path := range Candidates() {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Candidates returns the config search list in order.
func Candidates() []string {
	var candidates []string

	if p, ok := os.LookupEnv(EnvPrefix + "_CONFIG"); ok && p != "" {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, UserConfigPath())
	candidates = append(candidates, "notekeeper.yaml")
	return candidates
}

// UserConfigPath is the per-user config file location.
func UserConfigPath() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "notekeeper", "notekeeper.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notekeeper", "notekeeper.yaml")
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/notekeeper if set, otherwise ~/.local/share/notekeeper.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok && dir != "" {
		return filepath.Join(dir, "notekeeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "notekeeper")
}

// Write marshals cfg to path, creating parent directories. An existing
// file is not overwritten unless force is set.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s: %w", path, os.ErrExist)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if subs[2] != nil {
			return subs[2]
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}
