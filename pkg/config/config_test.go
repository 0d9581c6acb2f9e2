package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahadsiddiqui/khata/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(config.DefaultDataDir, "exports"), cfg.ExportDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KHATA_DATA_DIR", "/tmp/khata-test")
	t.Setenv("KHATA_AUTO_EXPORT_DISABLED", "true")
	t.Setenv("KHATA_AUTO_EXPORT_INTERVAL_HOURS", "24")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/khata-test", cfg.DataDir)
	assert.Equal(t, filepath.Join("/tmp/khata-test", "exports"), cfg.ExportDir)
	assert.True(t, cfg.AutoExport.Disabled)
	assert.Equal(t, 24, cfg.AutoExport.IntervalHours)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "KHATA_DATA_DIR": "/from/file",
  "KHATA_AUTO_EXPORT_FORMAT": "csv"
}`), 0o600))

	t.Setenv("KHATA_DATA_DIR", "/from/env")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.DataDir, "environment wins over the file")
	assert.Equal(t, "csv", cfg.AutoExport.Format)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDataDir, cfg.DataDir)
}
