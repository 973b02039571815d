// Package config reads runtime settings for the openclawd client and
// server from the environment, applying defaults for local use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

const (
	DefaultServer           = "localhost"
	DefaultTimeout          = 5 * time.Second
	DefaultAddr             = ":3000"
	DefaultEnvironment      = "development"
	DefaultSimulateInterval = 15 * time.Second
	DefaultTrackRequests    = true
	DefaultMaxActivities    = 1000
)

// Config holds both client and server settings. Flags override it.
type Config struct {
	// Client
	Server   string
	Username string
	Password string
	Timeout  time.Duration

	// Server
	Addr             string
	DBPath           string
	Environment      string
	ServerUsername   string
	ServerPassword   string
	TrackRequests    bool
	SimulateInterval time.Duration
	MaxActivities    int

	LogLevel slog.Level
}

// LoadEnvFile loads variables from a .env file without overriding the
// ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	addr := DefaultAddr
	if port := getEnv("PORT", ""); port != "" {
		addr = ":" + port
	}

	return Config{
		Server:   getEnv("OPENCLAWD_SERVER", DefaultServer),
		Username: getEnv("OPENCLAWD_USERNAME", ""),
		Password: getEnv("OPENCLAWD_PASSWORD", ""),
		Timeout:  getDurationEnv("OPENCLAWD_TIMEOUT", DefaultTimeout),

		Addr:             getEnv("OPENCLAWD_ADDR", addr),
		DBPath:           getEnv("OPENCLAWD_DB_PATH", DefaultDBPath()),
		Environment:      getEnv("OPENCLAWD_ENV", DefaultEnvironment),
		ServerUsername:   getEnv("OPENCLAWD_SERVER_USERNAME", ""),
		ServerPassword:   getEnv("OPENCLAWD_SERVER_PASSWORD", ""),
		TrackRequests:    getBoolEnv("OPENCLAWD_TRACK_REQUESTS", DefaultTrackRequests),
		SimulateInterval: getDurationEnv("OPENCLAWD_SIMULATE_INTERVAL", DefaultSimulateInterval),
		MaxActivities:    getIntEnv("OPENCLAWD_MAX_ACTIVITIES", DefaultMaxActivities),

		LogLevel: ParseLogLevel(getEnv("LOG_LEVEL", "info")),
	}
}

// DefaultDBPath is ~/.openclawd/openclawd.db, or a relative path when the
// home directory cannot be resolved.
func DefaultDBPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".openclawd", "openclawd.db")
	}
	return filepath.Join(home, ".openclawd", "openclawd.db")
}

// ParseLogLevel maps names such as "debug" or "WARN" to a slog level,
// defaulting to info.
func ParseLogLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
