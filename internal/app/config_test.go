package app

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the test; t.Setenv restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "DB_DRIVER", "ACCESS_TOKEN_TTL", "REASONING_MAX_RETRIES", "AUTO_MIGRATE")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 720*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 0, cfg.ReasoningMaxRetries)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/c.db")
	t.Setenv("LOCK_TTL", "5s")
	t.Setenv("FRONTEND_URL", "https://a.example, https://b.example,,")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBOptions().Driver)
	assert.Equal(t, "/tmp/c.db", cfg.DBOptions().SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.RedisOptions().TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.FrontendOrigins())
	assert.Equal(t, "abc", cfg.OtelConfig().Headers["x-api-key"])
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidateServe(t *testing.T) {
	err := Config{}.ValidateServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
	assert.Contains(t, err.Error(), "REASONING_API_KEY")

	require.NoError(t, Config{JWTSecretKey: "s", ReasoningAPIKey: "k"}.ValidateServe())
}
