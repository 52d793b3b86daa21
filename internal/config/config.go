package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort             string
	PostgresDSN          string
	RedisURL             string
	JWTSecret            string
	LogLevel             string
	DirectionsFile       string
	AccessTokenTTL       time.Duration
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxIdle        time.Duration
	DBConnMaxLife        time.Duration
	RequestTimeout       time.Duration
	DeactivationInterval time.Duration
	MetricsEnabled       bool
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		PostgresDSN:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DirectionsFile:       getEnv("DIRECTIONS_FILE", ""),
		AccessTokenTTL:       getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		DBMaxOpenConns:       getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:        getDuration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:        getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout:       getDuration("REQUEST_TIMEOUT", 10*time.Second),
		DeactivationInterval: getDuration("DEACTIVATION_INTERVAL", time.Hour),
		MetricsEnabled:       getBool("METRICS_ENABLED", true),
	}

	missing := make([]string, 0, 1)
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.DeactivationInterval <= 0 {
		return nil, fmt.Errorf("DEACTIVATION_INTERVAL must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
