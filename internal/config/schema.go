// Package config handles YAML configuration loading, environment variable
// expansion, environment overrides and validation for notekeeper.
package config

import (
	"time"

	"github.com/flemzord/notekeeper/internal/sandbox"
	"github.com/flemzord/notekeeper/internal/security"
	"github.com/flemzord/notekeeper/internal/telemetry"
	"github.com/flemzord/notekeeper/internal/tool"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// HomeRoot is the sandbox root. Empty means the current user's home
	// directory.
	HomeRoot string `yaml:"home_root,omitempty"`

	// DefaultSubpath is used below HomeRoot when no directory is given.
	DefaultSubpath string `yaml:"default_subpath,omitempty"`

	// Transport selects how hosts reach the server: stdio or http.
	Transport string `yaml:"transport,omitempty"`

	HTTP      HTTPConfig               `yaml:"http,omitempty"`
	Log       LogConfig                `yaml:"log,omitempty"`
	Tools     tool.Policy              `yaml:"tools,omitempty"`
	RateLimit security.RateLimitConfig `yaml:"rate_limit,omitempty"`
	Journal   JournalConfig            `yaml:"journal,omitempty"`
	Audit     AuditConfig              `yaml:"audit,omitempty"`
	Tracing   telemetry.TracingConfig  `yaml:"tracing,omitempty"`
}

// HTTPConfig configures the HTTP gateway.
type HTTPConfig struct {
	Bind            string        `yaml:"bind,omitempty"`
	Endpoint        string        `yaml:"endpoint,omitempty"`
	BearerToken     string        `yaml:"bearer_token,omitempty"`
	ReadTimeout     time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// JournalConfig configures the operation journal.
type JournalConfig struct {
	// Enabled defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Path is the SQLite file. Empty selects DefaultDataDir()/journal.db.
	Path string `yaml:"path,omitempty"`

	// Retention is how long entries are kept. Zero keeps them forever.
	Retention time.Duration `yaml:"retention,omitempty"`

	// PruneSchedule is a 5-field cron expression.
	PruneSchedule string `yaml:"prune_schedule,omitempty"`
}

// IsEnabled reports whether journaling is on.
func (j JournalConfig) IsEnabled() bool { return j.Enabled == nil || *j.Enabled }

// AuditConfig configures the JSONL audit log.
type AuditConfig struct {
	// Path is the audit file. Empty disables auditing.
	Path string `yaml:"path,omitempty"`
}

// Default values.
const (
	DefaultBind            = "127.0.0.1:8765"
	DefaultEndpoint        = "/mcp"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultRetention       = 30 * 24 * time.Hour
	DefaultPruneSchedule   = "0 3 * * *"
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.DefaultSubpath == "" {
		c.DefaultSubpath = sandbox.DefaultSubpath
	}
	if c.Transport == "" {
		c.Transport = TransportStdio
	}
	if c.HTTP.Bind == "" {
		c.HTTP.Bind = DefaultBind
	}
	if c.HTTP.Endpoint == "" {
		c.HTTP.Endpoint = DefaultEndpoint
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Journal.Retention == 0 {
		c.Journal.Retention = DefaultRetention
	}
	if c.Journal.PruneSchedule == "" {
		c.Journal.PruneSchedule = DefaultPruneSchedule
	}
	// Zero is indistinguishable from unset; an empty endpoint disables tracing.
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1
	}
}
