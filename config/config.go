/*
Package config loads runtime settings from the environment.

SOURCES (later wins):
  1. Built-in defaults
  2. .env file in the working directory, if present
  3. Process environment
  4. CLI flags (applied by cmd/practrack)

VARIABLES:
  PRACTRACK_DB              SQLite path             practical_hours.db
  PRACTRACK_PORT            HTTP port               8080
  PRACTRACK_LOG_LEVEL       debug|info|warn|error   info
  PRACTRACK_CORS_ORIGINS    comma separated         http://localhost:5173,http://localhost:8080
  PRACTRACK_MAX_UPLOAD_MB   roster upload limit     10
  PRACTRACK_STATS_INTERVAL  gauge refresh period    1m (0 disables)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultDBPath        = "practical_hours.db"
	DefaultPort          = 8080
	DefaultLogLevel      = "info"
	DefaultMaxUploadMB   = 10
	DefaultStatsInterval = time.Minute
)

// DefaultCORSOrigins are the dev frontend origins.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// Config is the resolved application configuration.
type Config struct {
	DBPath        string
	Port          int
	LogLevel      string
	CORSOrigins   []string
	MaxUploadMB   int
	StatsInterval time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DBPath:        DefaultDBPath,
		Port:          DefaultPort,
		LogLevel:      DefaultLogLevel,
		CORSOrigins:   append([]string(nil), DefaultCORSOrigins...),
		MaxUploadMB:   DefaultMaxUploadMB,
		StatsInterval: DefaultStatsInterval,
	}
}

// Load reads .env (if any) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from defaults and the process environment only.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	cfg.DBPath = getEnv("PRACTRACK_DB", cfg.DBPath)
	cfg.LogLevel = strings.ToLower(getEnv("PRACTRACK_LOG_LEVEL", cfg.LogLevel))

	if cfg.Port, err = intEnv("PRACTRACK_PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadMB, err = intEnv("PRACTRACK_MAX_UPLOAD_MB", cfg.MaxUploadMB); err != nil {
		return Config{}, err
	}
	if cfg.StatsInterval, err = durationEnv("PRACTRACK_STATS_INTERVAL", cfg.StatsInterval); err != nil {
		return Config{}, err
	}
	if v := getEnv("PRACTRACK_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	return cfg, cfg.Validate()
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: database path is empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("config: max upload size must be positive, got %d", c.MaxUploadMB)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("config: stats interval must not be negative, got %s", c.StatsInterval)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SlogLevel returns the configured log level; Validate guarantees it parses.
func (c Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return i, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
