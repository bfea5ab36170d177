// Package config loads runtime configuration from the environment.
//
// CONFIGURATION STRATEGY:
// Everything comes from environment variables, with a .env file loaded first
// via godotenv for local development. Env vars win over .env, so a deployed
// container never accidentally reads a checked-in development file.
//
// Every value has either a sensible default or an explicit validation error
// returned from Load — the server either starts with a complete config or
// tells you exactly which variable is wrong.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port      int    // HTTP listen port
	DBPath    string // SQLite database file ("file::memory:" style paths work too)
	JWTSecret string // HMAC secret for session tokens; empty disables auth routes
	TokenTTL  time.Duration

	// Rate limiting. RedisAddr selects the Redis-backed store when set;
	// empty falls back to the in-process store.
	RedisAddr     string
	RedisPassword string
	RateLimit     int
	RateWindow    time.Duration

	CORSAllowedOrigins []string
}

// Load reads the .env file (if present) and the environment.
func Load() (Config, error) {
	// Missing .env is fine — production sets real env vars.
	_ = godotenv.Load()

	cfg := Config{
		DBPath:             getEnv("DB_PATH", "data/wisdom.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = getEnvInt("RATE_LIMIT", 100); err != nil {
		return Config{}, err
	}
	if cfg.RateWindow, err = getEnvDuration("RATE_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: PORT %d out of range", cfg.Port)
	}
	if cfg.RateLimit < 1 {
		return Config{}, fmt.Errorf("config: RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, raw)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration like \"90s\" or \"1m\", got %q", key, raw)
	}
	if value <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %q", key, raw)
	}
	return value, nil
}

// splitCSV turns "a, b,c" into ["a","b","c"], defaulting to a wildcard when
// the input is empty.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
