package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	t.Setenv(EnvConfigPath, path)
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.MaxParallel != DefaultMaxParallel {
		t.Errorf("MaxParallel = %d, expected %d", cfg.MaxParallel, DefaultMaxParallel)
	}
	if cfg.SubmitPolicy != PolicyNameReplace {
		t.Errorf("SubmitPolicy = %q, expected %q", cfg.SubmitPolicy, PolicyNameReplace)
	}
	if !cfg.AutoUpdateEngine {
		t.Error("AutoUpdateEngine should default to true")
	}
}

func TestLoad_MergesPartialFile(t *testing.T) {
	writeConfig(t, `
max_parallel = 4
submit_policy = "keep"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.MaxParallel != 4 {
		t.Errorf("MaxParallel = %d, expected 4", cfg.MaxParallel)
	}
	if cfg.SubmitPolicy != PolicyNameKeep {
		t.Errorf("SubmitPolicy = %q, expected keep", cfg.SubmitPolicy)
	}
	// Untouched fields keep their defaults
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, expected default %d", cfg.MaxAttempts, DefaultMaxAttempts)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero parallel", "max_parallel = 0"},
		{"zero attempts", "max_attempts = 0"},
		{"negative backoff", "backoff_step_sec = -1"},
		{"unknown policy", `submit_policy = "maybe"`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			writeConfig(t, test.content)
			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted invalid config %q", test.content)
			}
		})
	}
}

func TestStateDBPath_Override(t *testing.T) {
	cfg := Default()
	cfg.StateDB = "/tmp/custom.db"

	path, err := cfg.StateDBPath()
	if err != nil {
		t.Fatalf("StateDBPath() failed: %v", err)
	}
	if path != "/tmp/custom.db" {
		t.Errorf("StateDBPath() = %q, expected override", path)
	}
}
