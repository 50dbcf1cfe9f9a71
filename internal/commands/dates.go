package commands

import (
	"fmt"
	"strings"
	"time"
)

var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDue parses a due date in local time. A date without a clock time is
// due at 09:00. A leading "+" takes a duration relative to now.
func parseDue(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("due date is empty")
	}

	if rest, ok := strings.CutPrefix(v, "+"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse relative due date %q: %w", v, err)
		}
		return now.Add(d), nil
	}

	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, v, now.Location())
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(9 * time.Hour)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("parse due date %q: use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", RFC 3339 or +<duration>", v)
}

// parseDay parses a YYYY-MM-DD day filter.
func parseDay(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: use YYYY-MM-DD", v)
	}
	return t, nil
}
