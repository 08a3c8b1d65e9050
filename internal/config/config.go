// Package config manages application configuration
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	PublicURL   string // base of invite links handed to referrals

	// Backend
	APIURL         string
	RequestTimeout time.Duration

	// Local client state
	StatePath       string
	ProfileCacheTTL time.Duration

	// Screens
	RedirectDelay time.Duration
	CatalogFile   string // optional YAML replacing the built-in plans

	// Logging
	LogLevel string
	LogDev   bool

	// Development backend (cmd/mockapi)
	MockAPIPort   string
	MockJWTSecret string
	MockTokenTTL  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("WIPROX_PORT", "8080")
	return &Config{
		Port:        port,
		Environment: getEnv("WIPROX_ENV", "development"),
		PublicURL:   strings.TrimRight(getEnv("WIPROX_PUBLIC_URL", "http://localhost:"+port), "/"),

		APIURL:         strings.TrimRight(getEnv("WIPROX_API_URL", "http://localhost:3000/api"), "/"),
		RequestTimeout: getDurationEnv("WIPROX_REQUEST_TIMEOUT", 15*time.Second),

		StatePath:       getEnv("WIPROX_STATE_PATH", "wiprox.db"),
		ProfileCacheTTL: getDurationEnv("WIPROX_PROFILE_CACHE_TTL", 5*time.Minute),

		RedirectDelay: getDurationEnv("WIPROX_REDIRECT_DELAY", 2*time.Second),
		CatalogFile:   getEnv("WIPROX_CATALOG_FILE", ""),

		LogLevel: getEnv("LOG_LEVEL", ""),
		LogDev:   getBoolEnv("LOG_DEV", false),

		MockAPIPort:   getEnv("MOCKAPI_PORT", "3000"),
		MockJWTSecret: getEnv("MOCKAPI_JWT_SECRET", "dev-secret-key-change-in-production"),
		MockTokenTTL:  getDurationEnv("MOCKAPI_TOKEN_TTL", 24*time.Hour),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// InviteLink builds the registration link carrying a referral code
func (c *Config) InviteLink(referralCode string) string {
	if referralCode == "" {
		return c.PublicURL + "/register"
	}
	return c.PublicURL + "/register/" + referralCode
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
