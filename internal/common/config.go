// Package common provides shared utilities for Sonagi
package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Sonagi
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Quota       QuotaConfig   `toml:"quota"`
	Catalog     CatalogConfig `toml:"catalog"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
	Auth        AuthConfig    `toml:"auth"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the document store connection.
// Backend "memory" keeps everything in process (dev and tests).
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// QuotaConfig holds usage quota settings.
type QuotaConfig struct {
	Backend        string `toml:"backend"` // "store" (default) or "redis"
	DefaultLimit   int    `toml:"default_limit"`
	RedisAddress   string `toml:"redis_address"`
	RedisDB        int    `toml:"redis_db"`
	PeriodLocation string `toml:"period_location"`
}

// GetLocation returns the time zone used to derive quota periods.
func (c *QuotaConfig) GetLocation() *time.Location {
	if c.PeriodLocation == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.PeriodLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CatalogConfig points at an optional catalog file. Empty uses the embedded seed.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	Temperature       float64 `toml:"temperature"`
	MaxOutputTokens   int     `toml:"max_output_tokens"`
	Timeout           string  `toml:"timeout"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
	BreakerFailures   int     `toml:"breaker_failures"`
	BreakerTimeout    string  `toml:"breaker_timeout"`
}

// GetTimeout parses and returns the per-call timeout
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 45 * time.Second
	}
	return d
}

// GetBreakerTimeout parses and returns how long the breaker stays open
func (c *GeminiConfig) GetBreakerTimeout() time.Duration {
	d, err := time.ParseDuration(c.BreakerTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// AuthConfig holds JWT configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   "surrealdb",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "sonagi",
			Database:  "sonagi",
			Username:  "root",
			Password:  "root",
		},
		Quota: QuotaConfig{
			Backend:        "store",
			DefaultLimit:   5,
			RedisAddress:   "localhost:6379",
			PeriodLocation: "Asia/Seoul",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:             "gemini-2.0-flash",
				Temperature:       0.7,
				MaxOutputTokens:   2000,
				Timeout:           "45s",
				RequestsPerMinute: 30,
				BreakerFailures:   5,
				BreakerTimeout:    "60s",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Quota.DefaultLimit < 0 {
		config.Quota.DefaultLimit = 0
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SONAGI_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SONAGI_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SONAGI_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SONAGI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage overrides
	if v := os.Getenv("SONAGI_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("SONAGI_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("SONAGI_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("SONAGI_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	// Quota overrides
	if v := os.Getenv("SONAGI_QUOTA_BACKEND"); v != "" {
		config.Quota.Backend = v
	}
	if v := os.Getenv("SONAGI_QUOTA_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Quota.DefaultLimit = n
		}
	}
	if v := os.Getenv("SONAGI_REDIS_ADDRESS"); v != "" {
		config.Quota.RedisAddress = v
	}

	if v := os.Getenv("SONAGI_CATALOG_PATH"); v != "" {
		config.Catalog.Path = v
	}

	if v := os.Getenv("SONAGI_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}

	// Auth overrides
	if v := os.Getenv("SONAGI_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("SONAGI_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// SystemKVReader is the subset of the internal store used to resolve secrets.
type SystemKVReader interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
}

// ResolveAPIKey resolves an API key from environment, the system KV store, or fallback
func ResolveAPIKey(ctx context.Context, store SystemKVReader, name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "SONAGI_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Environment first
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if store != nil {
		apiKey, err := store.GetSystemKV(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}
