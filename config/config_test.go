package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PRACTRACK_DB", "PRACTRACK_PORT", "PRACTRACK_LOG_LEVEL",
		"PRACTRACK_CORS_ORIGINS", "PRACTRACK_MAX_UPLOAD_MB", "PRACTRACK_STATS_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "practical_hours.db", cfg.DBPath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORSOrigins)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, time.Minute, cfg.StatsInterval)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRACTRACK_DB", "/tmp/hours.db")
	t.Setenv("PRACTRACK_PORT", "9090")
	t.Setenv("PRACTRACK_LOG_LEVEL", "DEBUG")
	t.Setenv("PRACTRACK_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("PRACTRACK_MAX_UPLOAD_MB", "2")
	t.Setenv("PRACTRACK_STATS_INTERVAL", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/hours.db", cfg.DBPath)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes())
	assert.Zero(t, cfg.StatsInterval)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"port not a number": {"PRACTRACK_PORT", "eighty"},
		"port out of range": {"PRACTRACK_PORT", "70000"},
		"zero upload":       {"PRACTRACK_MAX_UPLOAD_MB", "0"},
		"bad duration":      {"PRACTRACK_STATS_INTERVAL", "soon"},
		"unknown level":     {"PRACTRACK_LOG_LEVEL", "verbose"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
