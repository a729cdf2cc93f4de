package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CSRF_SECRET", "secret")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("SESSION_CLEANUP_SCHEDULE", "")
	t.Setenv("TELEGRAM_POLLING", "")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "./hireloop.db", cfg.DatabasePath)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.PublicURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "@hourly", cfg.CleanupSchedule)
	assert.True(t, cfg.TelegramPolling)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CSRF_SECRET", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("PUBLIC_URL", "https://hireloop.example/")
	t.Setenv("TELEGRAM_POLLING", "false")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://hireloop.example", cfg.PublicURL)
	assert.False(t, cfg.TelegramPolling)
}

func TestFromEnv_Required(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("CSRF_SECRET", "secret")
	_, err := fromEnv()
	assert.EqualError(t, err, "BOT_TOKEN is required")

	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CSRF_SECRET", "")
	_, err = fromEnv()
	assert.EqualError(t, err, "CSRF_SECRET is required")
}
