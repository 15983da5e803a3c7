// Package config handles TOML-based configuration loading and validation.
// Missing files fall back to defaults; partial files are merged over them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Submission policy names accepted in the config file
const (
	PolicyNameReplace = "replace"
	PolicyNameKeep    = "keep"
)

// Default values
const (
	DefaultMaxParallel    = 2
	DefaultMaxAttempts    = 3
	DefaultBackoffStepSec = 10
	DefaultListenAddr     = "127.0.0.1:8975"
)

// EnvConfigPath overrides the config file location when set
const EnvConfigPath = "ZENLOAD_CONFIG"

// Config holds all application configuration.
type Config struct {
	// DownloadDir overrides the platform downloads location; empty means
	// resolve the public downloads directory at startup
	DownloadDir string `toml:"download_dir"`

	// MaxParallel bounds concurrently running transfers
	MaxParallel int `toml:"max_parallel"`

	// MaxAttempts and BackoffStepSec shape the linear retry policy
	MaxAttempts    int `toml:"max_attempts"`
	BackoffStepSec int `toml:"backoff_step_sec"`

	// SubmitPolicy is "replace" or "keep"
	SubmitPolicy string `toml:"submit_policy"`

	// AutoUpdateEngine enables the one-time engine install/update check at
	// first use
	AutoUpdateEngine bool `toml:"auto_update_engine"`

	// ListenAddr is the HTTP API bind address
	ListenAddr string `toml:"listen_addr"`

	// StateDB is the job store path; empty means the default under the
	// config directory
	StateDB string `toml:"state_db"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MaxParallel:      DefaultMaxParallel,
		MaxAttempts:      DefaultMaxAttempts,
		BackoffStepSec:   DefaultBackoffStepSec,
		SubmitPolicy:     PolicyNameReplace,
		AutoUpdateEngine: true,
		ListenAddr:       DefaultListenAddr,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zenload"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "zenload"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StateDBPath returns the job store location, honoring the configured
// override.
func (c *Config) StateDBPath() (string, error) {
	if c.StateDB != "" {
		return c.StateDB, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	return filepath.Join(dir, "jobs.db"), nil
}

// BackoffStep returns the configured retry backoff step as a duration.
func (c *Config) BackoffStep() time.Duration {
	return time.Duration(c.BackoffStepSec) * time.Second
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be at least 1, got %d", c.MaxParallel)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.BackoffStepSec < 0 {
		return fmt.Errorf("backoff_step_sec must not be negative, got %d", c.BackoffStepSec)
	}
	if c.SubmitPolicy != PolicyNameReplace && c.SubmitPolicy != PolicyNameKeep {
		return fmt.Errorf("submit_policy must be %q or %q, got %q", PolicyNameReplace, PolicyNameKeep, c.SubmitPolicy)
	}
	return nil
}
