// Package config loads and validates the service configuration. Defaults
// are always usable; a YAML file and a handful of environment variables
// can override them without code changes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-signal/pkg/signal"
	"github.com/dd0wney/cluso-signal/pkg/validation"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig configures request authentication. Authentication is only
// enforced when a JWT secret or API keys are configured.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenDuration time.Duration `yaml:"token_duration"`
	APIKeys       []string      `yaml:"api_keys"` // bcrypt hashes
}

// Enabled reports whether any credential source is configured.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || len(a.APIKeys) > 0
}

// BroadcastConfig configures the downstream timing publisher.
type BroadcastConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
	Compress   bool   `yaml:"compress"`
}

// HistoryConfig configures the optional Postgres timing history.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DatabaseURL string `yaml:"database_url"`
}

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Signal    signal.Config   `yaml:"signal"`
	Auth      AuthConfig      `yaml:"auth"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	History   HistoryConfig   `yaml:"history"`
	LogLevel  string          `yaml:"log_level"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Signal: signal.DefaultConfig(),
		Auth: AuthConfig{
			TokenDuration: 24 * time.Hour,
		},
		Broadcast: BroadcastConfig{
			ListenAddr: "tcp://127.0.0.1:9560",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment overrides, then validates it. An empty path skips the
// file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIGNAL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SIGNAL_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SIGNAL_DATABASE_URL"); v != "" {
		cfg.History.DatabaseURL = v
		cfg.History.Enabled = true
	}
	if v := os.Getenv("SIGNAL_BROADCAST_ADDR"); v != "" {
		cfg.Broadcast.ListenAddr = v
		cfg.Broadcast.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks the whole configuration tree. Failures here are fatal
// at startup; nothing is deferred to request time.
func (c Config) Validate() error {
	cv := validation.NewConfigValidator("Config")

	cv.RangeInt("Server.Port", c.Server.Port, 1, 65535).
		OneOf("LogLevel", c.LogLevel, []string{"debug", "info", "warn", "error"}).
		When(c.Auth.JWTSecret != "", func(v *validation.ConfigValidator) {
			v.MinLength("Auth.JWTSecret", c.Auth.JWTSecret, 32)
		}).
		When(c.Broadcast.Enabled, func(v *validation.ConfigValidator) {
			v.Required("Broadcast.ListenAddr", c.Broadcast.ListenAddr)
		}).
		When(c.History.Enabled, func(v *validation.ConfigValidator) {
			v.Required("History.DatabaseURL", c.History.DatabaseURL)
		})

	if err := cv.Validate(); err != nil {
		return err
	}

	return c.Signal.Validate()
}
