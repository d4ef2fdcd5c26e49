package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Orphan policies for hierarchy builds
const (
	OrphanPolicyReattach = "reattach"
	OrphanPolicyStrict   = "strict"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Database configuration
	DatabaseURL string
	DBMaxConns  int

	// Redis configuration, an empty URL disables the currency cache
	RedisURL         string
	RedisPassword    string
	CurrencyCacheTTL time.Duration

	// HTTP configuration
	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int

	HierarchyOrphanPolicy string

	// Background ledger integrity check, zero disables it
	IntegrityCheckInterval time.Duration
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   getEnv("ENV", "development"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DBMaxConns:            getEnvAsInt("DB_MAX_CONNS", 25),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		CurrencyCacheTTL:      getEnvAsDuration("CURRENCY_CACHE_TTL", 10*time.Minute),
		AllowedOrigins:        getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		RateLimitRPS:          getEnvAsInt("RATE_LIMIT_RPS", 100),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		HierarchyOrphanPolicy: strings.ToLower(getEnv("HIERARCHY_ORPHAN_POLICY", OrphanPolicyReattach)),

		IntegrityCheckInterval: getEnvAsDuration("INTEGRITY_CHECK_INTERVAL", time.Hour),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if c.IntegrityCheckInterval < 0 {
		return fmt.Errorf("INTEGRITY_CHECK_INTERVAL must not be negative")
	}

	switch c.HierarchyOrphanPolicy {
	case OrphanPolicyReattach, OrphanPolicyStrict:
	default:
		return fmt.Errorf("HIERARCHY_ORPHAN_POLICY must be %q or %q, got %q",
			OrphanPolicyReattach, OrphanPolicyStrict, c.HierarchyOrphanPolicy)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CacheEnabled reports whether a Redis cache is configured
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
