package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COSTCO_DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PORT", "")
	t.Setenv("COSTCO_REFRESH_PATH", "")
	t.Setenv("COSTCO_RUN_CRON", "")
	t.Setenv("COSTCO_WORKERS", "")
	t.Setenv("DEV_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8010, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Empty(t, cfg.CronSpec)
	assert.Zero(t, cfg.Workers)
	assert.Equal(t, filepath.Join(cfg.DataDir, "latest_inputs.json"), cfg.RefreshPath)
	assert.DirExists(t, cfg.DataDir)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("COSTCO_DATA_DIR", dataDir)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "9100")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("COSTCO_RUN_CRON", "0 6 * * *")
	t.Setenv("COSTCO_WORKERS", "4")
	t.Setenv("COSTCO_REFRESH_PATH", filepath.Join(dataDir, "custom.json"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "0 6 * * *", cfg.CronSpec)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, filepath.Join(dataDir, "custom.json"), cfg.RefreshPath)
}

func TestLoad_InvalidNumericEnvFallsBack(t *testing.T) {
	t.Setenv("COSTCO_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "not-a-port")
	t.Setenv("COSTCO_WORKERS", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.Zero(t, cfg.Workers)
}
