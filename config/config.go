// Package config loads the database and cascade settings of an application
// from YAML and opens the configured driver.
//
//	dialect: postgres
//	dsn: postgres://localhost:5432/blog?sslmode=disable
//	debug: true
//	logLevel: debug
//	maxOpenConns: 10
//	connMaxLifetime: 5m
//	outbox:
//	  enabled: true
//	  table: persist_outbox
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/persist/dialect"
)

// Config holds the settings of a persister.
type Config struct {
	// Dialect is one of mysql, postgres or sqlite.
	Dialect string `yaml:"dialect"`
	// DSN is the data source name passed to the database driver.
	DSN string `yaml:"dsn"`
	// Debug logs every statement at debug level.
	Debug bool `yaml:"debug,omitempty"`
	// LogLevel is one of debug, info, warn or error. Defaults to info.
	LogLevel string `yaml:"logLevel,omitempty"`

	MaxOpenConns    int           `yaml:"maxOpenConns,omitempty"`
	MaxIdleConns    int           `yaml:"maxIdleConns,omitempty"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime,omitempty"`

	Outbox Outbox `yaml:"outbox,omitempty"`
}

// Outbox configures the transactional event outbox.
type Outbox struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Table   string `yaml:"table,omitempty"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Dialect {
	case dialect.MySQL, dialect.Postgres, dialect.SQLite:
	case "":
		return NewConfigError("dialect", nil, "dialect is required")
	default:
		return NewConfigError("dialect", c.Dialect, "unsupported dialect; use mysql, postgres or sqlite")
	}
	if c.DSN == "" {
		return NewConfigError("dsn", nil, "dsn is required")
	}
	if c.MaxOpenConns < 0 {
		return NewConfigError("maxOpenConns", c.MaxOpenConns, "must not be negative")
	}
	if c.MaxIdleConns < 0 {
		return NewConfigError("maxIdleConns", c.MaxIdleConns, "must not be negative")
	}
	if c.ConnMaxLifetime < 0 {
		return NewConfigError("connMaxLifetime", c.ConnMaxLifetime, "must not be negative")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

// Logger returns a text logger writing to w at the configured level.
// A nil writer writes to stderr.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, _ := c.level()
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c *Config) level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, NewConfigError("logLevel", c.LogLevel, "use debug, info, warn or error")
	}
}
