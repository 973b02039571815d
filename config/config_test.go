package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT",
	"OPENCLAWD_SERVER",
	"OPENCLAWD_USERNAME",
	"OPENCLAWD_PASSWORD",
	"OPENCLAWD_TIMEOUT",
	"OPENCLAWD_ADDR",
	"OPENCLAWD_DB_PATH",
	"OPENCLAWD_ENV",
	"OPENCLAWD_SERVER_USERNAME",
	"OPENCLAWD_SERVER_PASSWORD",
	"OPENCLAWD_TRACK_REQUESTS",
	"OPENCLAWD_SIMULATE_INTERVAL",
	"OPENCLAWD_MAX_ACTIVITIES",
	"LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Empty(t, cfg.Username)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultDBPath(), cfg.DBPath)
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.True(t, cfg.TrackRequests)
	assert.Equal(t, DefaultSimulateInterval, cfg.SimulateInterval)
	assert.Equal(t, DefaultMaxActivities, cfg.MaxActivities)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENCLAWD_SERVER", "192.168.1.100")
	t.Setenv("OPENCLAWD_USERNAME", "admin")
	t.Setenv("OPENCLAWD_PASSWORD", "secret")
	t.Setenv("OPENCLAWD_TIMEOUT", "2s")
	t.Setenv("PORT", "8080")
	t.Setenv("OPENCLAWD_DB_PATH", "/tmp/openclawd.db")
	t.Setenv("OPENCLAWD_TRACK_REQUESTS", "false")
	t.Setenv("OPENCLAWD_SIMULATE_INTERVAL", "0s")
	t.Setenv("OPENCLAWD_MAX_ACTIVITIES", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "192.168.1.100", cfg.Server)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/tmp/openclawd.db", cfg.DBPath)
	assert.False(t, cfg.TrackRequests)
	assert.Zero(t, cfg.SimulateInterval)
	assert.Equal(t, 10, cfg.MaxActivities)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_AddrBeatsPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("OPENCLAWD_ADDR", "127.0.0.1:9000")

	assert.Equal(t, "127.0.0.1:9000", Load().Addr)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENCLAWD_TIMEOUT", "soon")
	t.Setenv("OPENCLAWD_MAX_ACTIVITIES", "many")
	t.Setenv("OPENCLAWD_TRACK_REQUESTS", "perhaps")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxActivities, cfg.MaxActivities)
	assert.True(t, cfg.TrackRequests)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	assert.NoError(t, LoadEnvFile(""))
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	// godotenv never overrides variables that exist, even empty ones.
	os.Unsetenv("OPENCLAWD_SERVER")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPENCLAWD_SERVER=openclawd:3000\n"), 0o600))
	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "openclawd:3000", Load().Server)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLogLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel(""))
}
