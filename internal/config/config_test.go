package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seeksy-app/runway/internal/modules/forecast"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RUNWAY_DATA_DIR", filepath.Join(t.TempDir(), "data"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, forecast.DefaultGrowthRate, cfg.DefaultGrowthRate)
	assert.Equal(t, forecast.DefaultHorizonMonths, cfg.DefaultHorizon)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.DirExists(t, cfg.DataDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RUNWAY_DATA_DIR", t.TempDir())
	t.Setenv("RUNWAY_PORT", "9000")
	t.Setenv("RUNWAY_GROWTH_RATE", "0.1")
	t.Setenv("RUNWAY_HORIZON_MONTHS", "24")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 0.1, cfg.DefaultGrowthRate)
	assert.Equal(t, 24, cfg.DefaultHorizon)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsNegativeHorizon(t *testing.T) {
	t.Setenv("RUNWAY_DATA_DIR", t.TempDir())
	t.Setenv("RUNWAY_HORIZON_MONTHS", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestBackupDisabledWithoutCredentials(t *testing.T) {
	t.Setenv("RUNWAY_DATA_DIR", t.TempDir())
	t.Setenv("R2_BUCKET", "")
	t.Setenv("R2_ACCESS_KEY_ID", "")
	t.Setenv("R2_SECRET_ACCESS_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Backup)
	assert.False(t, cfg.Backup.Enabled)
}

func TestBackupEnabledWithCredentials(t *testing.T) {
	t.Setenv("RUNWAY_DATA_DIR", t.TempDir())
	t.Setenv("R2_BUCKET", "backups")
	t.Setenv("R2_ENDPOINT", "https://example.r2.cloudflarestorage.com")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Backup)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, "backups", cfg.Backup.Bucket)
	assert.Equal(t, "0 0 4 * * SUN", cfg.Backup.Schedule)
}
