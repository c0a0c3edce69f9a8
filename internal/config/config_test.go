package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads, so the host environment
// cannot leak into a test. t.Setenv restores the old values afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "STORE_DRIVER", "DB_PATH", "MONGODB_URI",
		"MONGODB_DATABASE", "JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST",
		"UPLOAD_DIR", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "data/social.db", cfg.DBPath)
	assert.Equal(t, "mini_red_social", cfg.MongoDatabase)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.InsecureSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("JWT_SECRET", "a-very-long-production-secret")
	t.Setenv("TOKEN_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.False(t, cfg.InsecureSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"PORT":         "eighty",
		"TOKEN_TTL":    "a week",
		"LOG_LEVEL":    "loud",
		"STORE_DRIVER": "postgres",
		"JWT_SECRET":   "short",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
