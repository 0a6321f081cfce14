// Package config handles taskdeck client configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no taskdeck config found")
	ErrInvalid  = errors.New("invalid config")
)

// Config holds the client configuration.
type Config struct {
	Version        int       `yaml:"version"`
	APIURL         string    `yaml:"api_url"`
	PageSize       int       `yaml:"page_size"`
	RequestTimeout string    `yaml:"request_timeout,omitempty"`
	MaxRetries     int       `yaml:"max_retries,omitempty"`
	Log            LogConfig `yaml:"log,omitempty"`

	// path is the absolute path to the loaded config file (not serialized).
	path string `yaml:"-"`
}

// LogConfig holds observability settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
	File  string `yaml:"file,omitempty"`  // empty means the default log path
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version:        CurrentVersion,
		APIURL:         DefaultAPIURL,
		PageSize:       DefaultPageSize,
		RequestTimeout: DefaultRequestTimeout,
		MaxRetries:     DefaultMaxRetries,
		Log:            LogConfig{Level: DefaultLogLevel},
	}
}

// DefaultDir returns the path to ~/.config/taskdeck.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config/taskdeck"), nil
}

// Load reads the config file from dir, applying .env and environment
// overrides. A missing file returns ErrNotFound.
func Load(dir string) (*Config, error) {
	// .env next to the working directory is loaded best-effort, the way
	// local development setups expect. Real env vars take precedence.
	_ = godotenv.Load()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.path = path
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrInit loads the config from dir, creating it with defaults if it
// does not exist yet.
func LoadOrInit(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd // standard dir mode
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	cfg = NewDefault()
	cfg.path = filepath.Join(dir, ConfigFileName)
	cfg.applyEnv()
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file settings from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("TASKDECK_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Path returns the absolute path to the config file.
func (c *Config) Path() string {
	return c.path
}

// LogPath returns the log file path, defaulting to taskdeck.log next to
// the config file.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(filepath.Dir(c.path), "taskdeck.log")
}

// Timeout returns the parsed request timeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultRequestTimeout)
	}
	return d
}

// Save writes the config back to its file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, data, fileMode); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an absolute URL", ErrInvalid, c.APIURL)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("%w: page_size must be >= 1", ErrInvalid)
	}
	if c.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
			return fmt.Errorf("%w: invalid request_timeout %q: %w", ErrInvalid, c.RequestTimeout, err)
		}
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0", ErrInvalid)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q must be one of debug, info, warn, error", ErrInvalid, c.Log.Level)
	}
	return nil
}
