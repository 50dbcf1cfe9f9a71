package pomodoro

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// Settings configure session durations and automatic transitions. Durations
// are whole minutes.
type Settings struct {
	WorkMinutes             int  `json:"workDuration"            yaml:"work_minutes"`
	ShortBreakMinutes       int  `json:"shortBreakDuration"      yaml:"short_break_minutes"`
	LongBreakMinutes        int  `json:"longBreakDuration"       yaml:"long_break_minutes"`
	SessionsBeforeLongBreak int  `json:"sessionsBeforeLongBreak" yaml:"sessions_before_long_break"`
	AutoStartBreaks         bool `json:"autoStartBreaks"         yaml:"auto_start_breaks"`
	AutoStartWork           bool `json:"autoStartWork"           yaml:"auto_start_work"`
	NotificationsEnabled    bool `json:"notifications"           yaml:"notifications"`
}

// DefaultSettings returns the settings a new identity starts with.
func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:             25,
		ShortBreakMinutes:       5,
		LongBreakMinutes:        15,
		SessionsBeforeLongBreak: 4,
		AutoStartBreaks:         false,
		AutoStartWork:           false,
		NotificationsEnabled:    true,
	}
}

// ValidationError reports every rejected settings field.
type ValidationError struct {
	Fields criterio.FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Field, f.Err))
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}

// Validate rejects non-positive durations and cadence. Values are never clamped.
func (s Settings) Validate() error {
	err := criterio.ValidateStruct(
		criterio.Run("workDuration", s.WorkMinutes, positive),
		criterio.Run("shortBreakDuration", s.ShortBreakMinutes, positive),
		criterio.Run("longBreakDuration", s.LongBreakMinutes, positive),
		criterio.Run("sessionsBeforeLongBreak", s.SessionsBeforeLongBreak, positive),
	)
	if err == nil {
		return nil
	}

	var fields criterio.FieldErrors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return &ValidationError{Fields: criterio.FieldErrors{{Field: "settings", Err: err}}}
}

func positive(v int) error {
	if v <= 0 {
		return fmt.Errorf("must be greater than 0, got %d", v)
	}
	return nil
}

// Minutes returns the configured minutes for a session type.
func (s Settings) Minutes(t SessionType) int {
	switch t {
	case ShortBreak:
		return s.ShortBreakMinutes
	case LongBreak:
		return s.LongBreakMinutes
	default:
		return s.WorkMinutes
	}
}

// Seconds returns the nominal length of a session in seconds.
func (s Settings) Seconds(t SessionType) int {
	return s.Minutes(t) * 60
}

// Duration returns the nominal length of a session.
func (s Settings) Duration(t SessionType) time.Duration {
	return time.Duration(s.Minutes(t)) * time.Minute
}

// NextAfterWork picks the break that follows a work session given the number
// of completed work sessions.
func (s Settings) NextAfterWork(completed int) SessionType {
	if s.SessionsBeforeLongBreak > 0 && completed%s.SessionsBeforeLongBreak == 0 {
		return LongBreak
	}
	return ShortBreak
}
