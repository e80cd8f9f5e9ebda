package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Prefs     PrefsConfig
	Defaults  DefaultsConfig
	I18n      I18nConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Feed      FeedConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port      string `envconfig:"PORT" default:"9600"`
	Host      string `envconfig:"HOST" default:"0.0.0.0"`
	Namespace string `envconfig:"NAMESPACE" default:"reportdeck"`
}

// PrefsConfig holds preference store configuration.
type PrefsConfig struct {
	Driver        string        `envconfig:"PREFS_DRIVER" default:"memory"`
	Dir           string        `envconfig:"PREFS_DIR" default:"./data/prefs"`
	RedisAddr     string        `envconfig:"PREFS_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"PREFS_REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"PREFS_REDIS_DB" default:"0"`
	RedisTTL      time.Duration `envconfig:"PREFS_REDIS_TTL" default:"0"`
	SQLitePath    string        `envconfig:"PREFS_SQLITE_PATH" default:"./data/prefs.db"`
}

// DefaultsConfig holds the default-widgets loader configuration.
type DefaultsConfig struct {
	Dir string `envconfig:"DEFAULTS_DIR" default:"./defaults"`
}

// I18nConfig holds translation catalog configuration.
type I18nConfig struct {
	Dir    string `envconfig:"I18N_DIR" default:""`
	Locale string `envconfig:"I18N_LOCALE" default:"en"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin configuration.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// FeedConfig holds the feed widget's HTTP client configuration.
type FeedConfig struct {
	Timeout           time.Duration `envconfig:"FEED_TIMEOUT" default:"10s"`
	RequestsPerSecond int           `envconfig:"FEED_RPS" default:"2"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "9600",
			Host:      "0.0.0.0",
			Namespace: "reportdeck",
		},
		Prefs: PrefsConfig{
			Driver:     "memory",
			Dir:        "./data/prefs",
			RedisAddr:  "localhost:6379",
			SQLitePath: "./data/prefs.db",
		},
		Defaults: DefaultsConfig{
			Dir: "./defaults",
		},
		I18n: I18nConfig{
			Locale: "en",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
		Feed: FeedConfig{
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
		},
	}
}
