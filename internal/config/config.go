package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the backoffice client and development server configuration.
type Config struct {
	API       APIConfig       `koanf:"api"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Refresh   RefreshConfig   `koanf:"refresh"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Photos    PhotosConfig    `koanf:"photos"`
	Devserver DevserverConfig `koanf:"devserver"`
}

type APIConfig struct {
	BaseURL   string        `koanf:"base_url" validate:"required"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	UserAgent string        `koanf:"user_agent"`
}

type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxFailures uint32        `koanf:"max_failures" validate:"gte=1"`
	OpenTimeout time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

// RefreshConfig controls background refetching of the visible list. A zero
// interval disables it.
type RefreshConfig struct {
	Interval time.Duration `koanf:"interval" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	File   string `koanf:"file" validate:"required"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr" validate:"omitempty,hostname_port"`
}

type PhotosConfig struct {
	WarnBytes int `koanf:"warn_bytes" validate:"gt=0"`
}

type DevserverConfig struct {
	Addr          string `koanf:"addr" validate:"required,hostname_port"`
	AdminUsername string `koanf:"admin_username" validate:"required"`
	AdminPassword string `koanf:"admin_password"`
	AdminEmail    string `koanf:"admin_email" validate:"omitempty,email"`
	Years         int    `koanf:"years" validate:"gte=0"`
	Awards        int    `koanf:"awards" validate:"gte=0"`
}

const (
	defaultConfigPath = "~/.config/backoffice/config.toml"
	defaultLogFile    = "~/.local/state/backoffice/backoffice.log"
	defaultBaseURL    = "http://127.0.0.1:8080"
	defaultDevAddr    = "127.0.0.1:8080"

	envPrefix = "BACKOFFICE_"
)

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: defaultBaseURL,
			Timeout: 10 * time.Second,
		},
		Breaker: BreakerConfig{
			Enabled:     true,
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
		Refresh: RefreshConfig{Interval: 30 * time.Second},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   defaultLogFile,
		},
		Photos: PhotosConfig{WarnBytes: 2 << 20},
		Devserver: DevserverConfig{
			Addr:          defaultDevAddr,
			AdminUsername: "admin",
			AdminEmail:    "admin@example.com",
		},
	}
}

// Load layers defaults, the TOML file at path and BACKOFFICE_* environment
// variables, in that order. A missing file is not an error. An empty path
// selects ~/.config/backoffice/config.toml.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	k := koanf.New(".")
	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	switch _, err := os.Stat(resolved); {
	case err == nil:
		if err := k.Load(file.Provider(resolved), Parser()); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if strings.TrimSpace(c.Log.File) == "" {
		c.Log.File = def.Log.File
	}
	c.Log.File = mustExpand(c.Log.File)
	c.Metrics.Addr = strings.TrimSpace(c.Metrics.Addr)
	c.Devserver.Addr = strings.TrimSpace(c.Devserver.Addr)
	c.Devserver.AdminUsername = strings.TrimSpace(c.Devserver.AdminUsername)
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	if err := validate().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// envMappings maps BACKOFFICE_* variables, without the prefix, to config
// keys. Unlisted variables are ignored.
var envMappings = map[string]string{
	"api_url":              "api.base_url",
	"api_timeout":          "api.timeout",
	"user_agent":           "api.user_agent",
	"breaker_enabled":      "breaker.enabled",
	"breaker_max_failures": "breaker.max_failures",
	"breaker_open_timeout": "breaker.open_timeout",
	"refresh_interval":     "refresh.interval",
	"log_level":            "log.level",
	"log_format":           "log.format",
	"log_file":             "log.file",
	"metrics_addr":         "metrics.addr",
	"photo_warn_bytes":     "photos.warn_bytes",
	"devserver_addr":       "devserver.addr",
	"admin_username":       "devserver.admin_username",
	"admin_password":       "devserver.admin_password",
	"admin_email":          "devserver.admin_email",
}

func envKey(key string) string {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
	return envMappings[key]
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
