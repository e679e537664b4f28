package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	EnvDevelopment = "development"

	DevelopmentAPIBaseURL = "http://localhost:8000"
	ProductionAPIBaseURL  = "https://api.vybe.africa"

	TokenStoreMemory = "memory"
	TokenStoreSQLite = "sqlite"
	TokenStoreRedis  = "redis"

	minJWTSecretLength     = 32
	encryptionKeyHexLength = 64
)

type Config struct {
	AppEnv         string        `env:"APP_ENV" default:"development"`
	APIBaseURL     string        `env:"API_BASE_URL"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" default:"10s"`
	CacheTTL       time.Duration `env:"CACHE_TTL" default:"5m"`
	TokenStore     string        `env:"TOKEN_STORE" default:"sqlite"`
	TokenStorePath string        `env:"TOKEN_STORE_PATH"`
	RedisURL       string        `env:"REDIS_URL"`
	EncryptionKey  string        `env:"TOKEN_ENCRYPTION_KEY"`
	LogLevel       string        `env:"LOG_LEVEL" default:"info"`
	LogFormat      string        `env:"LOG_FORMAT" default:"text"`

	Port           string        `env:"PORT" default:"8000"`
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" default:"30m"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsDevelopment reports whether APP_ENV is "development".
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func applyDefaults(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		if cfg.IsDevelopment() {
			cfg.APIBaseURL = DevelopmentAPIBaseURL
		} else {
			cfg.APIBaseURL = ProductionAPIBaseURL
		}
	}

	if cfg.TokenStorePath == "" && cfg.TokenStore == TokenStoreSQLite {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("TOKEN_STORE_PATH is required when the home directory is unknown: %w", err)
		}
		cfg.TokenStorePath = filepath.Join(home, ".vybe", "session.db")
	}

	return nil
}

func validate(cfg *Config) error {
	switch cfg.TokenStore {
	case TokenStoreMemory, TokenStoreSQLite:
	case TokenStoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when TOKEN_STORE is redis")
		}
	default:
		return fmt.Errorf("TOKEN_STORE must be one of memory, sqlite, redis, got %q", cfg.TokenStore)
	}

	if cfg.EncryptionKey != "" && len(cfg.EncryptionKey) != encryptionKeyHexLength {
		return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be %d hex characters", encryptionKeyHexLength)
	}

	if cfg.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if cfg.CacheTTL < 0 {
		return errors.New("CACHE_TTL must not be negative")
	}

	return nil
}

// ValidateServer checks the settings only the dev server needs.
func ValidateServer(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if cfg.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.Port == "" {
		return errors.New("PORT is required")
	}
	return nil
}
