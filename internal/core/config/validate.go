package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/colonyops/tempo/internal/core/pomodoro"
	"github.com/colonyops/tempo/internal/core/styles"
	"github.com/hay-kot/criterio"
)

const (
	minTickInterval = 10 * time.Millisecond
	maxTickInterval = time.Minute
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty),
		validatePomodoro(c.Pomodoro),
		criterio.Run("tick_interval", c.TickInterval, tickInRange),
		criterio.Run("database.max_open_conns", c.Database.MaxOpenConns, atLeast(1)),
		criterio.Run("database.max_idle_conns", c.Database.MaxIdleConns, atLeast(0)),
		criterio.Run("database.busy_timeout", c.Database.BusyTimeout, atLeast(0)),
		criterio.Run("notifications.history_retention", c.Notifications.HistoryRetention, atLeastDuration(time.Hour)),
		criterio.Run("tui.theme", c.TUI.Theme, knownTheme),
	)
}

// ValidateDeep performs Validate plus file system checks. The configPath
// argument specifies the config file location to validate (empty string skips
// the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	n := c.Notifications
	if n.Enabled && !n.ShowAlert && !n.PlaySound && !n.SetBadge {
		warnings = append(warnings, ValidationWarning{
			Category: "Notifications",
			Message:  "notifications are enabled but show_alert, play_sound and set_badge are all off",
		})
	}

	if c.Pomodoro.NotificationsEnabled && !n.Enabled {
		warnings = append(warnings, ValidationWarning{
			Category: "Notifications",
			Item:     "pomodoro.notifications",
			Message:  "session alerts are requested but notifications.enabled is false",
		})
	}

	if c.Pomodoro.ShortBreakMinutes >= c.Pomodoro.WorkMinutes {
		warnings = append(warnings, ValidationWarning{
			Category: "Pomodoro",
			Item:     "pomodoro.short_break_minutes",
			Message:  "short break is not shorter than a work session",
		})
	}

	return warnings
}

func validatePomodoro(s pomodoro.Settings) error {
	err := s.Validate()
	if err == nil {
		return nil
	}

	var verr *pomodoro.ValidationError
	if !errors.As(err, &verr) {
		return criterio.NewFieldErrors("pomodoro", err)
	}

	var errs criterio.FieldErrorsBuilder
	for _, f := range verr.Fields {
		errs = errs.Append("pomodoro."+f.Field, f.Err)
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func atLeastDuration(floor time.Duration) func(time.Duration) error {
	return func(d time.Duration) error {
		if d < floor {
			return fmt.Errorf("must be at least %s, got %s", floor, d)
		}
		return nil
	}
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func tickInRange(d time.Duration) error {
	if d < minTickInterval || d > maxTickInterval {
		return fmt.Errorf("must be between %s and %s, got %s", minTickInterval, maxTickInterval, d)
	}
	return nil
}

func atLeast(n int) func(int) error {
	return func(v int) error {
		if v < n {
			return fmt.Errorf("must be at least %d, got %d", n, v)
		}
		return nil
	}
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
