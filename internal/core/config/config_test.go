package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/colonyops/tempo/internal/core/pomodoro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, pomodoro.DefaultSettings(), cfg.Pomodoro)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.True(t, cfg.Notifications.Enabled)
	assert.True(t, cfg.Notifications.ShowAlert)
	assert.False(t, cfg.Notifications.SetBadge)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.Equal(t, 720*time.Hour, cfg.Notifications.HistoryRetention)
}

func TestLoad_OverridesMergeWithDefaults(t *testing.T) {
	path := writeConfig(t, `
pomodoro:
  work_minutes: 50
  auto_start_breaks: true
notifications:
  play_sound: false
tick_interval: 500ms
tui:
  compact: true
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, 5, cfg.Pomodoro.ShortBreakMinutes, "unset fields keep defaults")
	assert.True(t, cfg.Pomodoro.AutoStartBreaks)
	assert.True(t, cfg.Pomodoro.NotificationsEnabled)
	assert.False(t, cfg.Notifications.PlaySound)
	assert.True(t, cfg.Notifications.ShowAlert)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.TUI.Compact)
	assert.Equal(t, "tokyo-night", cfg.TUI.Theme)
}

func TestLoad_ZeroValuesGetDefaults(t *testing.T) {
	path := writeConfig(t, `
tick_interval: 0s
database:
  max_open_conns: 0
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
}

func TestLoad_InvalidPomodoro(t *testing.T) {
	path := writeConfig(t, `
pomodoro:
  work_minutes: 0
`)

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pomodoro.workDuration")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "pomodoro: [")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pomodoro.WorkMinutes = 45

	out, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "work_minutes: 45")
	assert.NotContains(t, string(out), "DataDir")

	path := writeConfig(t, string(out))
	loaded, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 45, loaded.Pomodoro.WorkMinutes)
	assert.Equal(t, cfg.TickInterval, loaded.TickInterval)
}
