package config

import (
	"errors"
	"os"
)

// Config holds all runtime configuration, read once at startup from the
// environment (a .env file is loaded by the entrypoint when present).
type Config struct {
	Addr         string // HTTP listen address
	DBPath       string // SQLite database file
	JWTSecret    string // HS256 signing key for access tokens
	StripeAPIKey string // Stripe secret key; payments disabled when empty
	SentryDSN    string // error reporting; disabled when empty
	GinMode      string // gin mode override (debug/release/test)
	Dev          bool   // DEV_MODE=true relaxes startup checks
}

var ErrMissingSecretKey = errors.New("SECRET_KEY not configured")

// Load reads configuration from the environment. Outside dev mode a missing
// SECRET_KEY is a startup error: tokens signed with an ad-hoc key would be
// invalidated on every restart.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:         getEnv("ADDR", ":8000"),
		DBPath:       getEnv("DB_PATH", "feedsheild.db"),
		JWTSecret:    os.Getenv("SECRET_KEY"),
		StripeAPIKey: os.Getenv("STRIPE_API_KEY"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		GinMode:      os.Getenv("GIN_MODE"),
		Dev:          os.Getenv("DEV_MODE") == "true",
	}

	if cfg.JWTSecret == "" {
		if !cfg.Dev {
			return nil, ErrMissingSecretKey
		}
		cfg.JWTSecret = "dev-insecure-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
