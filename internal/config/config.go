// Package config loads server settings from an optional YAML file, a .env
// file and ASYNCRES_* environment variables, in increasing precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ASYNCRES_"

var (
	// ErrParsingConfig is returned when the YAML file or environment cannot be decoded.
	ErrParsingConfig = errors.New("failed to parse config")

	// ErrInvalidConfig is returned when a loaded value is out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds the settings of the asyncresource server.
type Config struct {
	Addr     string      `yaml:"addr" env:"ADDR"`
	LogLevel string      `yaml:"log_level" env:"LOG_LEVEL"`
	Store    StoreConfig `yaml:"store" envPrefix:"STORE_"`
	Redis    RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
	Demo     DemoConfig  `yaml:"demo" envPrefix:"DEMO_"`
}

// StoreConfig controls where and how snapshots are persisted.
// Redis, when enabled, takes precedence over Dir; with neither, snapshots stay in memory.
type StoreConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
	// EncryptionKey is a base64 encoded 32 byte AES-256 key.
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	// RedactKeys are regular expressions; matching data fields are masked before saving.
	RedactKeys []string `yaml:"redact_keys" env:"REDACT_KEYS"`
}

// Key decodes EncryptionKey. It returns nil when no key is configured.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: store.encryption_key is not base64: %v", ErrInvalidConfig, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: store.encryption_key must decode to 32 bytes, got %d", ErrInvalidConfig, len(key))
	}
	return key, nil
}

// RedisConfig selects the Redis snapshot store. An empty Addr means in-memory.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// DemoConfig shapes the fake user directory.
type DemoConfig struct {
	Users    int           `yaml:"users" env:"USERS"`
	PageSize int           `yaml:"page_size" env:"PAGE_SIZE"`
	Latency  time.Duration `yaml:"latency" env:"LATENCY"`
	// BackendURL points the actions at an external directory instead of the in-process one.
	BackendURL string `yaml:"backend_url" env:"BACKEND_URL"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Redis: RedisConfig{
			Prefix:  "asyncresource:",
			LockTTL: 30 * time.Second,
		},
		Demo: DemoConfig{
			Users:    1000,
			PageSize: 10,
			Latency:  300 * time.Millisecond,
		},
	}
}

// Load starts from Default, overlays the YAML file at path (skipped when path
// is empty) and then the environment. A .env file in the working directory is
// loaded into the environment first if present.
func Load(path string) (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Join(ErrParsingConfig, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	case c.Demo.PageSize < 1:
		return fmt.Errorf("%w: demo.page_size must be positive, got %d", ErrInvalidConfig, c.Demo.PageSize)
	case c.Demo.Users < 0:
		return fmt.Errorf("%w: demo.users must not be negative, got %d", ErrInvalidConfig, c.Demo.Users)
	case c.Demo.Latency < 0:
		return fmt.Errorf("%w: demo.latency must not be negative", ErrInvalidConfig)
	case c.Redis.TTL < 0:
		return fmt.Errorf("%w: redis.ttl must not be negative", ErrInvalidConfig)
	}
	for _, pattern := range c.Store.RedactKeys {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: store.redact_keys: %v", ErrInvalidConfig, err)
		}
	}
	_, err := c.Store.Key()
	return err
}
