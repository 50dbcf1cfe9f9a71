// Package pomodoro implements the focus timer: the work/break session cycle,
// its settings and their per-identity persistence.
package pomodoro

import (
	"errors"
	"fmt"
	"strings"
)

// SessionType is one timed interval of the cycle.
type SessionType string

const (
	Work       SessionType = "work"
	ShortBreak SessionType = "short_break"
	LongBreak  SessionType = "long_break"
)

// ErrInvalidSession is returned for an unknown session type.
var ErrInvalidSession = errors.New("invalid session type")

// SessionTypes lists every session type in cycle order.
func SessionTypes() []SessionType {
	return []SessionType{Work, ShortBreak, LongBreak}
}

// IsValid reports whether s is a known session type.
func (s SessionType) IsValid() bool {
	switch s {
	case Work, ShortBreak, LongBreak:
		return true
	}
	return false
}

// IsBreak reports whether s is a short or long break.
func (s SessionType) IsBreak() bool {
	return s == ShortBreak || s == LongBreak
}

// Label is the human readable name.
func (s SessionType) Label() string {
	switch s {
	case Work:
		return "Focus"
	case ShortBreak:
		return "Short Break"
	case LongBreak:
		return "Long Break"
	}
	return string(s)
}

// Ptr returns a pointer to s, for Skip targets.
func (s SessionType) Ptr() *SessionType {
	return &s
}

// ParseSessionType accepts the canonical names plus a few short aliases.
func ParseSessionType(v string) (SessionType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "work", "focus", "w":
		return Work, nil
	case "short_break", "short", "shortbreak", "s":
		return ShortBreak, nil
	case "long_break", "long", "longbreak", "l":
		return LongBreak, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSession, v)
}
