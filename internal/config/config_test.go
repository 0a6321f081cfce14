package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: 1\napi_url: http://tasks.example.com/api\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIURL != "http://tasks.example.com/api" {
		t.Fatalf("unexpected api_url: %q", cfg.APIURL)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, cfg.PageSize)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout())
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Fatalf("unexpected path: %q", cfg.Path())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: 1\napi_url: http://file.example.com/api\n")
	t.Setenv("TASKDECK_API_URL", "http://env.example.com/api")
	t.Setenv("TASKDECK_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIURL != "http://env.example.com/api" {
		t.Fatalf("expected env override, got %q", cfg.APIURL)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected env log level, got %q", cfg.Log.Level)
	}
}

func TestLoadOrInitCreatesConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")

	cfg, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default api_url, got %q", cfg.APIURL)
	}
	if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("expected config file on disk: %v", err)
	}

	// A second call loads the file it just wrote.
	again, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.APIURL != cfg.APIURL {
		t.Fatalf("reloaded config differs: %q vs %q", again.APIURL, cfg.APIURL)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg.PageSize = 25
	cfg.Log.Level = "warn"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	back, err := Load(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if back.PageSize != 25 || back.Log.Level != "warn" {
		t.Fatalf("round trip lost values: %+v", back)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad version", func(c *Config) { c.Version = 99 }, false},
		{"relative url", func(c *Config) { c.APIURL = "localhost/api" }, false},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, false},
		{"bad timeout", func(c *Config) { c.RequestTimeout = "soon" }, false},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, false},
		{"empty log level", func(c *Config) { c.Log.Level = "" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefault()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestTimeoutFallsBackOnGarbage(t *testing.T) {
	cfg := NewDefault()
	cfg.RequestTimeout = "not-a-duration"
	if cfg.Timeout() != 10*time.Second {
		t.Fatalf("expected fallback timeout, got %v", cfg.Timeout())
	}
}

func TestLogPathDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if cfg.LogPath() != filepath.Join(dir, "taskdeck.log") {
		t.Fatalf("unexpected default log path: %q", cfg.LogPath())
	}

	cfg.Log.File = "/tmp/custom.log"
	if cfg.LogPath() != "/tmp/custom.log" {
		t.Fatalf("expected explicit log file to win, got %q", cfg.LogPath())
	}
}
