// Package config loads server configuration from environment variables.
// An optional .env file in the working directory is read first.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	Port   int
	DBPath string

	JWTSecret string
	JWTTTL    time.Duration

	// RedisURL enables the participant directory cache when set.
	RedisURL          string
	DirectoryCacheTTL time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8080),
		DBPath:            getEnv("DB_PATH", "./data/splitledger.db"),
		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		JWTTTL:            getEnvAsDuration("JWT_TTL", 24*time.Hour),
		RedisURL:          getEnv("REDIS_URL", ""),
		DirectoryCacheTTL: getEnvAsDuration("DIRECTORY_CACHE_TTL", 10*time.Minute),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.New("PORT must be between 1 and 65535")
	}
	if cfg.JWTTTL <= 0 {
		return nil, errors.New("JWT_TTL must be positive")
	}
	return cfg, nil
}

// UsingDefaultSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
