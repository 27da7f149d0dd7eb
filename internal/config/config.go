package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zapcore"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Store       string `env:"YZE_STORE" envDefault:"memory"`
	LogLevel    string `env:"YZE_LOG_LEVEL" envDefault:"info"`
	PushRetries int    `env:"YZE_PUSH_RETRIES" envDefault:"5"`

	Redis    RedisConfig
	SQLite   SQLiteConfig
	Settings SettingsConfig
}

// RedisConfig holds Redis-specific configuration. URL wins over the
// individual fields when set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	URL      string `env:"REDIS_URL"`
}

// SQLiteConfig holds the embedded store location
type SQLiteConfig struct {
	Path string `env:"YZE_SQLITE_PATH" envDefault:"yze.db"`
}

// SettingsConfig says where setting definitions live and which one starts active
type SettingsConfig struct {
	Dir    string `env:"YZE_SETTINGS_DIR"`
	Active string `env:"YZE_ACTIVE_SETTING"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected store has what it needs
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" && c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR or REDIS_URL is required when YZE_STORE=redis")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("REDIS_DB must not be negative, got %d", c.Redis.DB)
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return fmt.Errorf("YZE_SQLITE_PATH is required when YZE_STORE=sqlite")
		}
	default:
		return fmt.Errorf("YZE_STORE must be one of memory, redis or sqlite, got %q", c.Store)
	}

	if c.PushRetries < 1 {
		return fmt.Errorf("YZE_PUSH_RETRIES must be at least 1, got %d", c.PushRetries)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Settings.Active != "" && c.Settings.Dir == "" {
		return fmt.Errorf("YZE_ACTIVE_SETTING needs YZE_SETTINGS_DIR to load it from")
	}

	return nil
}

// Level parses LogLevel
func (c *Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid YZE_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Options builds go-redis options
func (c *RedisConfig) Options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return opts, nil
	}

	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}, nil
}
