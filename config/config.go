// Package config resolves SDK configuration once, up front, from the
// process environment or a YAML file. Endpoint addresses are validated at
// construction time so a misconfigured client fails before any network call.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variable names
const (
	EnvTrackingURI = "MLFLOW_TRACKING_URI"
	EnvRegistryURI = "MLFLOW_REGISTRY_URI"
	EnvLogLevel    = "MLFLOW_SDK_LOG_LEVEL"
	EnvMaxPages    = "MLFLOW_SDK_MAX_PAGES"
)

// ErrMissingVariable indicates a required configuration value is absent.
var ErrMissingVariable = errors.New("config: required variable not set")

// Config holds everything the SDK needs to talk to a tracking/registry
// server pair. TrackingURI and RegistryURI are required; the rest has
// defaults.
type Config struct {
	// TrackingURI is the base URL of the tracking server (experiments, runs,
	// proxied artifacts).
	TrackingURI string `yaml:"tracking_uri"`

	// RegistryURI is the base URL of the model registry server. Often the
	// same address as TrackingURI.
	RegistryURI string `yaml:"registry_uri"`

	// LogLevel is a zap level name ("debug", "info", "warn", "error").
	// Empty means "info".
	LogLevel string `yaml:"log_level"`

	// MaxPages bounds any single paged search as a guard against servers
	// that keep returning continuation tokens. Zero means unbounded, which
	// matches the server contract.
	MaxPages int `yaml:"max_pages"`
}

// FromEnv builds a Config from the process environment and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile builds a Config from a YAML file, lets environment variables
// override file values, and validates the result.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment values onto the config. Environment wins
// over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvTrackingURI); v != "" {
		c.TrackingURI = v
	}
	if v := os.Getenv(EnvRegistryURI); v != "" {
		c.RegistryURI = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvMaxPages); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxPages = n
		}
	}
}

// Validate reports every missing required value at once.
func (c *Config) Validate() error {
	var missing []string
	if c.TrackingURI == "" {
		missing = append(missing, EnvTrackingURI)
	}
	if c.RegistryURI == "" {
		missing = append(missing, EnvRegistryURI)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(missing, ", "))
	}
	return nil
}

// Logger builds a production zap logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if c.LogLevel != "" {
		if err := level.Set(c.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
		}
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(level)
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return loggerConfig.Build()
}
