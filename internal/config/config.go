package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the compass client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration // per-request HTTP timeout
	SessionPath  string        // empty means the session package default
	UserID       string        // owner of mirrored documents
	Store        StoreConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	Preview      PreviewConfig
	Notification NotificationConfig
}

// StoreConfig controls the local SQLite mirror of saved items.
type StoreConfig struct {
	Enabled   bool
	Path      string
	Retention time.Duration // 0 keeps mirrored documents forever
}

// RateLimitConfig controls the per-endpoint search limiter.
type RateLimitConfig struct {
	MinDelay time.Duration // minimum gap between two searches of the same kind
}

// RetryConfig controls retries of saved-item hydration.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// PreviewConfig controls the local preview server.
type PreviewConfig struct {
	Addr            string
	RefreshInterval time.Duration // 0 disables background re-hydration
}

// NotificationConfig controls where CLI toasts go.
type NotificationConfig struct {
	Type string `yaml:"type"` // "log" or "none"
}

const (
	defaultBaseURL     = "http://localhost:5000"
	defaultTimeout     = 30 * time.Second
	defaultStorePath   = "~/.config/compass/mirror.db"
	defaultMinDelay    = 2 * time.Second
	defaultMaxRetries  = 2
	defaultBaseDelay   = 1 * time.Second
	defaultPreviewAddr = "127.0.0.1:8089"
	defaultRefresh     = 5 * time.Minute
	defaultUserID      = "local"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	BaseURL      string             `yaml:"base_url"`
	Timeout      string             `yaml:"timeout"`
	SessionPath  string             `yaml:"session_path"`
	UserID       string             `yaml:"user_id"`
	Store        rawStoreConfig     `yaml:"store"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Retry        rawRetryConfig     `yaml:"retry"`
	Preview      rawPreviewConfig   `yaml:"preview"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawStoreConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

type rawPreviewConfig struct {
	Addr            string `yaml:"addr"`
	RefreshInterval string `yaml:"refresh_interval"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg, err := parse(rawConfig{})
	if err != nil {
		// Defaults are constants; failing here is a bug.
		panic(err)
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return parse(raw)
}

func parse(raw rawConfig) (*Config, error) {
	var err error

	timeout := defaultTimeout
	if raw.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse timeout %q: %w", raw.Timeout, err)
		}
	}

	minDelay := defaultMinDelay
	if raw.RateLimit.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	maxRetries := defaultMaxRetries
	if raw.Retry.MaxRetries != nil {
		maxRetries = *raw.Retry.MaxRetries
	}
	baseDelay := defaultBaseDelay
	if raw.Retry.BaseDelay != "" {
		baseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}

	var retention time.Duration
	if raw.Store.Retention != "" {
		retention, err = time.ParseDuration(raw.Store.Retention)
		if err != nil {
			return nil, fmt.Errorf("parse store.retention %q: %w", raw.Store.Retention, err)
		}
	}

	refresh := defaultRefresh
	if raw.Preview.RefreshInterval != "" {
		refresh, err = time.ParseDuration(raw.Preview.RefreshInterval)
		if err != nil {
			return nil, fmt.Errorf("parse preview.refresh_interval %q: %w", raw.Preview.RefreshInterval, err)
		}
	}

	storePath := raw.Store.Path
	if storePath == "" {
		storePath = defaultStorePath
	}
	storePath, err = expandHome(storePath)
	if err != nil {
		return nil, fmt.Errorf("store.path: %w", err)
	}

	cfg := &Config{
		BaseURL:     orDefault(raw.BaseURL, defaultBaseURL),
		Timeout:     timeout,
		SessionPath: raw.SessionPath,
		UserID:      orDefault(raw.UserID, defaultUserID),
		Store: StoreConfig{
			Enabled:   raw.Store.Enabled,
			Path:      storePath,
			Retention: retention,
		},
		RateLimit: RateLimitConfig{MinDelay: minDelay},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		},
		Preview: PreviewConfig{
			Addr:            orDefault(raw.Preview.Addr, defaultPreviewAddr),
			RefreshInterval: refresh,
		},
		Notification: NotificationConfig{Type: orDefault(raw.Notification.Type, "log")},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if !strings.Contains(cfg.BaseURL, ".") && !strings.Contains(cfg.BaseURL, ":") && cfg.BaseURL != "localhost" {
		return fmt.Errorf("base_url %q does not look like a host or URL", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}
	if cfg.Retry.MaxRetries < 0 || cfg.Retry.MaxRetries > 10 {
		return fmt.Errorf("retry.max_retries must be between 0 and 10, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry.base_delay must be positive, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.Store.Retention < 0 {
		return fmt.Errorf("store.retention must not be negative, got %v", cfg.Store.Retention)
	}
	if cfg.Preview.RefreshInterval < 0 {
		return fmt.Errorf("preview.refresh_interval must not be negative, got %v", cfg.Preview.RefreshInterval)
	}
	switch cfg.Notification.Type {
	case "log", "none":
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"none\", got %q", cfg.Notification.Type)
	}
	return nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
