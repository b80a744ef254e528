package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Address)
	require.Equal(t, "postgres", cfg.DB.Driver)
	require.Equal(t, 50, cfg.DB.MaxOpenConns)
	require.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
	require.Equal(t, "lot-imports", cfg.Azure.ImportQueue)
	require.Equal(t, time.Minute, cfg.Worker.ReconcileInterval)
	require.Equal(t, "America/Maceio", cfg.Streak.Timezone)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
environment: production
database:
  driver: sqlite
  dsn: /tmp/picking.db
redis:
  enabled: false
streak:
  timezone: UTC
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, "/tmp/picking.db", cfg.DB.DSN)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, "UTC", cfg.Streak.Timezone)
	// untouched keys keep their defaults
	require.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PICKING_SERVER_ADDRESS", "127.0.0.1:9090")
	t.Setenv("PICKING_WORKER_BATCH_SIZE", "10")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9090", cfg.Server.Address)
	require.Equal(t, 10, cfg.Worker.BatchSize)
}

func TestFormatIndex(t *testing.T) {
	require.Equal(t, "picking-activity", FormatIndex(ElasticConfig{Prefix: "picking"}, "activity"))
}
