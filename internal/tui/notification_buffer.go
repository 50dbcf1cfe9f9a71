package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/tempo/internal/core/notify"
)

// drainNotificationsMsg signals that delivered notifications are waiting.
type drainNotificationsMsg struct{}

// NotificationBuffer collects notifications delivered on timer goroutines
// and hands them to the update loop in batches.
type NotificationBuffer struct {
	mu      sync.Mutex
	pending []notify.Notification
	signal  chan struct{}
}

// NewNotificationBuffer constructs an empty buffer.
func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{
		signal: make(chan struct{}, 1),
	}
}

// Push appends n and wakes the update loop. It never blocks, so it is safe to
// register as a bus subscriber.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.pending = append(b.pending, n)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns the buffered notifications in arrival order and empties the buffer.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return nil
	}

	out := b.pending
	b.pending = nil
	return out
}

// WaitForSignal blocks until at least one notification has been pushed.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainNotificationsMsg{}
	}
}
