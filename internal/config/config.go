package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvDatabase = "STYLEBOOK_DB"
	EnvConfig   = "STYLEBOOK_CONFIG"
	EnvLogLevel = "STYLEBOOK_LOG_LEVEL"

	DefaultLogLevel      = "info"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultFetchAttempts = 1
	DefaultUserAgent     = "stylebook/1.0"
)

// Config holds runtime settings. Values come from the YAML file first and
// are then overridden by environment variables.
type Config struct {
	Database string `yaml:"database"`
	LogLevel string `yaml:"log_level"`
	// LogFile receives the logs of the TUI, which cannot write to the
	// terminal it draws on. Empty discards them.
	LogFile      string        `yaml:"log_file"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// FetchAttempts includes the first request; above 1, network errors
	// and 5xx responses are retried
	FetchAttempts int    `yaml:"fetch_attempts"`
	UserAgent     string `yaml:"user_agent"`
	// Editor opens downloaded assets; $VISUAL or $EDITOR when empty
	Editor string `yaml:"editor"`

	path string
}

// Path returns the file the config was loaded from, or "" when defaults
// were used
func (c *Config) Path() string {
	return c.path
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Database:      DefaultDatabasePath(),
		LogLevel:      DefaultLogLevel,
		FetchTimeout:  DefaultFetchTimeout,
		FetchAttempts: DefaultFetchAttempts,
		UserAgent:     DefaultUserAgent,
	}
}

// Load reads the config file named by STYLEBOOK_CONFIG, or the default
// location when unset. A missing default file is not an error.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv(EnvConfig)
	if !explicit {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(expandHome(path))
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, errors.Errorf("loading %s: %w", path, err)
		}
		cfg.path = path
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, errors.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	cfg.Database = expandHome(cfg.Database)
	cfg.LogFile = expandHome(cfg.LogFile)
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return errors.Errorf("parsing YAML: %w", err)
	}
	if cfg.FetchTimeout < 0 {
		return errors.Errorf("fetch_timeout must not be negative")
	}
	if cfg.FetchAttempts < 1 {
		return errors.Errorf("fetch_attempts must be at least 1")
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// DefaultDatabasePath returns $XDG_DATA_HOME/stylebook/settings.db
func DefaultDatabasePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local/share"), "stylebook", "settings.db")
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/stylebook/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "stylebook", "config.yaml")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return filepath.Join("~", fallback)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
