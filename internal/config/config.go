// Package config loads the server configuration from the environment.
//
// Every setting has a default that is fine for local development, so the
// server starts with no environment at all. cmd/server loads an optional
// .env file first, so values there behave exactly like exported variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevJWTSecret is used when JWT_SECRET is unset. Load reports it through
// Config.InsecureSecret so main can warn.
const DevJWTSecret = "dev-secret-change-me-please"

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Port     int
	LogLevel slog.Level

	StoreDriver   string
	DBPath        string
	MongoURI      string
	MongoDatabase string

	JWTSecret      string
	InsecureSecret bool
	TokenTTL       time.Duration
	BcryptCost     int

	UploadDir      string
	MaxUploadBytes int64
}

// Load reads the environment. Malformed numbers, durations, log levels or
// drivers are errors rather than silent fallbacks.
func Load() (Config, error) {
	var errs []string
	cfg := Config{
		Port:           envInt("PORT", 8080, &errs),
		StoreDriver:    strings.ToLower(envString("STORE_DRIVER", DriverSQLite)),
		DBPath:         envString("DB_PATH", "data/social.db"),
		MongoURI:       envString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  envString("MONGODB_DATABASE", "mini_red_social"),
		JWTSecret:      envString("JWT_SECRET", ""),
		TokenTTL:       envDuration("TOKEN_TTL", 7*24*time.Hour, &errs),
		BcryptCost:     envInt("BCRYPT_COST", 10, &errs),
		UploadDir:      envString("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 5<<20, &errs)),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(envString("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL: %v", err))
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevJWTSecret
		cfg.InsecureSecret = true
	}
	if len(cfg.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET: must be at least 16 characters")
	}

	switch cfg.StoreDriver {
	case DriverSQLite, DriverMongo:
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT: %d out of range", cfg.Port))
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, "MAX_UPLOAD_BYTES: must be positive")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func envDuration(key string, def time.Duration, errs *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}
