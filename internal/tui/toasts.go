package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/core/styles"
)

const (
	defaultToastTTL   = 8 * time.Second
	defaultMaxToasts  = 3
	toastTickInterval = 250 * time.Millisecond
	toastWidth        = 44
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

type toast struct {
	notification notify.Notification
	remaining    time.Duration
}

// Toasts is the stack of delivered alerts shown under the timer.
type Toasts struct {
	items   []toast
	ticking bool
}

// Push adds n to the stack, evicting the oldest toast past defaultMaxToasts.
func (c *Toasts) Push(n notify.Notification) {
	c.items = append(c.items, toast{notification: n, remaining: defaultToastTTL})
	if len(c.items) > defaultMaxToasts {
		c.items = c.items[len(c.items)-defaultMaxToasts:]
	}
}

// Tick ages every toast by d and drops the expired ones.
func (c *Toasts) Tick(d time.Duration) {
	alive := c.items[:0]
	for _, t := range c.items {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.items = alive
}

// Dismiss removes every toast.
func (c *Toasts) Dismiss() {
	c.items = c.items[:0]
}

// Len returns the number of visible toasts.
func (c *Toasts) Len() int {
	return len(c.items)
}

// View renders the stack oldest first.
func (c *Toasts) View() string {
	if len(c.items) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(c.items))
	for _, t := range c.items {
		content := t.notification.Title
		if t.notification.Message != "" {
			content += "\n" + styles.MutedStyle.Render(t.notification.Message)
		}
		rendered = append(rendered, styles.ToastStyle.Width(toastWidth).Render(content))
	}
	return strings.Join(rendered, "\n")
}
