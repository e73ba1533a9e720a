package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
base_url: https://compass.example.com
timeout: 10s
user_id: ann
store:
  enabled: true
  path: /tmp/mirror.db
  retention: 720h
rate_limit:
  min_delay: 500ms
retry:
  max_retries: 0
  base_delay: 2s
preview:
  addr: ":9000"
  refresh_interval: 0s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://compass.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if !cfg.Store.Enabled || cfg.Store.Path != "/tmp/mirror.db" || cfg.UserID != "ann" {
		t.Errorf("Store = %+v, UserID = %q", cfg.Store, cfg.UserID)
	}
	if cfg.RateLimit.MinDelay != 500*time.Millisecond {
		t.Errorf("MinDelay = %v", cfg.RateLimit.MinDelay)
	}
	if cfg.Retry.MaxRetries != 0 || cfg.Retry.BaseDelay != 2*time.Second {
		t.Errorf("Retry = %+v, want explicit zero retries kept", cfg.Retry)
	}
	if cfg.Store.Retention != 720*time.Hour {
		t.Errorf("Retention = %v", cfg.Store.Retention)
	}
	if cfg.Preview.RefreshInterval != 0 {
		t.Errorf("RefreshInterval = %v, want explicit 0 kept", cfg.Preview.RefreshInterval)
	}
	if cfg.Preview.Addr != ":9000" || cfg.Notification.Type != "log" {
		t.Errorf("Preview = %+v, Notification = %+v", cfg.Preview, cfg.Notification)
	}
}

func TestDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	if cfg.BaseURL != defaultBaseURL || cfg.Timeout != defaultTimeout {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Preview.RefreshInterval != defaultRefresh || cfg.Store.Retention != 0 {
		t.Errorf("Preview = %+v, Store = %+v", cfg.Preview, cfg.Store)
	}
	if cfg.Retry.MaxRetries != defaultMaxRetries {
		t.Errorf("MaxRetries = %d", cfg.Retry.MaxRetries)
	}
	if cfg.Store.Path != filepath.Join(home, ".config", "compass", "mirror.db") {
		t.Errorf("Store.Path = %q, want expanded home", cfg.Store.Path)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("COMPASS_TEST_HOST", "api.compass.test")
	cfg, err := Load(writeConfig(t, "base_url: https://${COMPASS_TEST_HOST}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://api.compass.test" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "timeout: [broken")); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad duration":       "timeout: soon\n",
		"zero timeout":       "timeout: 0s\n",
		"negative delay":     "rate_limit:\n  min_delay: -1s\n",
		"too many retries":   "retry:\n  max_retries: 50\n",
		"negative retention": "store:\n  retention: -1h\n",
		"unknown notifier":   "notification:\n  type: slack\n",
		"bare word base url": "base_url: compass\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Errorf("expected error for %q", content)
			}
		})
	}
}
