package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from environment variables. A local
// .env file is loaded first if present; real environment variables win over
// the file, which is godotenv's default behavior.
//
// Recognized variables:
//
//	ADDRESS                          HTTP bind address
//	DATABASE_DSN                     PostgreSQL DSN
//	SECRET_KEY                       JWT HMAC secret
//	TOKEN_VALIDITY_MINUTES           access token lifetime, minutes
//	REMINDER_POLL_INTERVAL_SECONDS   reminder scan interval, seconds
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		cfg.BindAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("TOKEN_VALIDITY_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.TokenValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("REMINDER_POLL_INTERVAL_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.ReminderPollInterval = time.Duration(seconds) * time.Second
		}
	}
}
