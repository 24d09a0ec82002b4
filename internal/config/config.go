package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Admin credentials. The password is bcrypt-hashed at startup and the
	// plaintext is discarded.
	AdminUser     string
	AdminPassword string

	// Cookie session signing key.
	SessionSecret string

	// Geolocation resolver base URL (ip-api.com compatible).
	GeoBaseURL string

	// Background sweep cadence.
	SweepInterval time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required secrets.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		AdminUser:     getEnv("ADMIN_USER", "adminof67"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "adminof67"),
		SessionSecret: getEnv("SESSION_SECRET", "change-this-secret-key-in-production"),
		GeoBaseURL:    os.Getenv("GEOIP_URL"),
		SweepInterval: 5 * time.Minute,
	}

	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}

	// In production, defaults for secrets are not acceptable
	if cfg.Env == "production" {
		if os.Getenv("SESSION_SECRET") == "" {
			panic("SESSION_SECRET is required in production")
		}
		if os.Getenv("ADMIN_PASSWORD") == "" {
			panic("ADMIN_PASSWORD is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
