// Package config handles configuration loading and validation for tempo.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/colonyops/tempo/internal/core/pomodoro"
	"github.com/colonyops/tempo/internal/core/styles"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// Pomodoro holds the settings an identity starts with before it saves its own.
	Pomodoro      pomodoro.Settings   `yaml:"pomodoro"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Database      DatabaseConfig      `yaml:"database"`
	TickInterval  time.Duration       `yaml:"tick_interval"`
	TUI           TUIConfig           `yaml:"tui"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// NotificationsConfig is the notification policy applied once at start-up.
type NotificationsConfig struct {
	Enabled   bool `yaml:"enabled"`
	ShowAlert bool `yaml:"show_alert"`
	PlaySound bool `yaml:"play_sound"`
	SetBadge  bool `yaml:"set_badge"`
	// HistoryRetention is how long delivered notifications are kept.
	HistoryRetention time.Duration `yaml:"history_retention"`
}

// DatabaseConfig tunes the sqlite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig controls the interactive timer.
type TUIConfig struct {
	Theme    string `yaml:"theme"`
	Compact  bool   `yaml:"compact"`
	HideHelp bool   `yaml:"hide_help"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Pomodoro: pomodoro.DefaultSettings(),
		Notifications: NotificationsConfig{
			Enabled:   true,
			ShowAlert: true,
			PlaySound: true,
			SetBadge:  false,

			HistoryRetention: 30 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		TickInterval: time.Second,
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.Notifications.HistoryRetention == 0 {
		c.Notifications.HistoryRetention = defaults.Notifications.HistoryRetention
	}
	if c.TickInterval == 0 {
		c.TickInterval = defaults.TickInterval
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
