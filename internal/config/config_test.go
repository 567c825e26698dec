package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eraceo/apmlive/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"apmlive"}, args...)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "apmlive.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	setArgs(t)
	t.Setenv("APMLIVE_CONFIG", writeConfigFile(t, ""))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.WindowSize, "Expected default WindowSize 60")
	assert.Equal(t, 10, cfg.APSWindow, "Expected default APSWindow 10")
	assert.Equal(t, 10, cfg.PruneGrace, "Expected default PruneGrace 10")
	assert.Equal(t, 100, cfg.UpdateInterval, "Expected default UpdateInterval 100")
	assert.Equal(t, 1000, cfg.StopTimeout, "Expected default StopTimeout 1000")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Telemetry)
	assert.NotEmpty(t, cfg.TelemetryDB, "telemetry path defaults to the data directory")
	assert.NotEmpty(t, cfg.ExportDir)
	assert.Equal(t, []string{"apm", "total_actions", "session_time"}, cfg.ExportFields)
}

func TestLoadConfigFile(t *testing.T) {
	setArgs(t)
	path := writeConfigFile(t, `
window_size = 30
aps_window = 5
update_interval = 250
monitor = true
log_level = "debug"
telemetry = true
telemetry_db = "/path/to/apm.db"
export = true
export_fields = ["apm", "actions_per_second"]
`)
	t.Setenv("APMLIVE_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.WindowSize)
	assert.Equal(t, 5, cfg.APSWindow)
	assert.Equal(t, 250, cfg.UpdateInterval)
	assert.True(t, cfg.Monitor)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Telemetry)
	assert.Equal(t, "/path/to/apm.db", cfg.TelemetryDB)
	assert.True(t, cfg.Export)
	assert.Equal(t, []string{"apm", "actions_per_second"}, cfg.ExportFields)
}

func TestFlagsOverrideFile(t *testing.T) {
	setArgs(t, "--window-size", "90", "--verbose")
	t.Setenv("APMLIVE_CONFIG", writeConfigFile(t, "window_size = 30"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.WindowSize, "Expected flag to override file value")
	assert.True(t, cfg.Verbose)
}

func TestLoadRejectsInvalidWindow(t *testing.T) {
	setArgs(t)
	t.Setenv("APMLIVE_CONFIG", writeConfigFile(t, "window_size = 0"))

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window")
}

func TestLoadRejectsInvalidInterval(t *testing.T) {
	setArgs(t)
	t.Setenv("APMLIVE_CONFIG", writeConfigFile(t, "update_interval = -5"))

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	setArgs(t)
	t.Setenv("APMLIVE_CONFIG", writeConfigFile(t, `log_level = "loud"`))

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	setArgs(t)
	t.Setenv("APMLIVE_CONFIG", writeConfigFile(t, "This is not a valid TOML file"))

	_, err := config.Load()
	require.Error(t, err)
}
