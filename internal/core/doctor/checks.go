package doctor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/hay-kot/criterio"
)

// ConfigCheck validates the loaded configuration and reports its warnings.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a config check for cfg loaded from path.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	label := c.path
	if _, err := os.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		label = c.path + " (not found, using defaults)"
	}

	if err := c.cfg.ValidateDeep(c.path); err != nil {
		var fields criterio.FieldErrors
		if !errors.As(err, &fields) {
			result.Items = append(result.Items, Item{Label: label, Status: StatusFail, Detail: err.Error()})
			return result
		}
		for _, f := range fields {
			result.Items = append(result.Items, Item{Label: f.Field, Status: StatusFail, Detail: f.Err.Error()})
		}
		return result
	}

	result.Items = append(result.Items, Item{Label: label, Status: StatusPass})
	for _, w := range c.cfg.Warnings() {
		result.Items = append(result.Items, Item{Label: w.Category, Status: StatusWarn, Detail: w.Message})
	}
	return result
}

// DatabaseCheck verifies the database answers and passes sqlite's integrity check.
type DatabaseCheck struct {
	conn *sql.DB
}

// NewDatabaseCheck creates a database check.
func NewDatabaseCheck(conn *sql.DB) *DatabaseCheck {
	return &DatabaseCheck{conn: conn}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.conn.PingContext(ctx); err != nil {
		result.Items = append(result.Items, Item{Label: "connection", Status: StatusFail, Detail: err.Error()})
		return result
	}
	result.Items = append(result.Items, Item{Label: "connection", Status: StatusPass})

	var integrity string
	if err := c.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		result.Items = append(result.Items, Item{Label: "integrity", Status: StatusFail, Detail: err.Error()})
	} else if integrity != "ok" {
		result.Items = append(result.Items, Item{Label: "integrity", Status: StatusFail, Detail: integrity})
	} else {
		result.Items = append(result.Items, Item{Label: "integrity", Status: StatusPass})
	}

	var mode string
	if err := c.conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err == nil {
		status := StatusPass
		if mode != "wal" {
			status = StatusWarn
		}
		result.Items = append(result.Items, Item{Label: "journal mode", Status: status, Detail: mode})
	}

	return result
}

// IdentityCheck reports whether anyone is signed in.
type IdentityCheck struct {
	current identity.Identity
}

// NewIdentityCheck creates an identity check.
func NewIdentityCheck(current identity.Identity) *IdentityCheck {
	return &IdentityCheck{current: current}
}

func (c *IdentityCheck) Name() string {
	return "Identity"
}

func (c *IdentityCheck) Run(_ context.Context) Result {
	if c.current.IsZero() {
		return Result{Name: c.Name(), Items: []Item{{
			Label:  "signed out",
			Status: StatusWarn,
			Detail: "settings, tasks and session counts are not saved; run 'tempo login <email>'",
		}}}
	}

	return Result{Name: c.Name(), Items: []Item{{
		Label:  c.current.Email,
		Status: StatusPass,
	}}}
}

// largeHistory is the entry count above which the history check warns.
const largeHistory = 500

// History counts and prunes delivered notifications.
type History interface {
	Count(ctx context.Context) (int64, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryCheck reports notification history size. With autofix it prunes
// entries older than the retention window.
type HistoryCheck struct {
	history   History
	retention time.Duration
	autofix   bool
	now       func() time.Time
}

// NewHistoryCheck creates a notification history check.
func NewHistoryCheck(history History, retention time.Duration, autofix bool) *HistoryCheck {
	return &HistoryCheck{history: history, retention: retention, autofix: autofix, now: time.Now}
}

func (c *HistoryCheck) Name() string {
	return "Notification history"
}

func (c *HistoryCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	total, err := c.history.Count(ctx)
	if err != nil {
		result.Items = append(result.Items, Item{Label: "count", Status: StatusFail, Detail: err.Error()})
		return result
	}

	item := Item{
		Label:  "entries",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d stored, kept for %s", total, c.retention),
	}

	if c.autofix {
		pruned, err := c.history.Prune(ctx, c.now().Add(-c.retention))
		if err != nil {
			item.Status = StatusFail
			item.Detail = fmt.Sprintf("prune: %v", err)
		} else if pruned > 0 {
			item.Detail = fmt.Sprintf("%d stored, pruned %d older than %s", total-pruned, pruned, c.retention)
		}
	} else if total > largeHistory {
		item.Status = StatusWarn
		item.Fixable = true
	}

	result.Items = append(result.Items, item)
	return result
}
