package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/tempo/internal/core/logging"
	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/rs/zerolog"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(notify.Notification)

// Bus is a synchronous in-process notification bus. It persists
// notifications to a Store and then dispatches them to subscribers inline.
type Bus struct {
	store       notify.Store
	subscribers []Subscriber
	mu          sync.Mutex
	log         zerolog.Logger
}

// NewBus creates a notification bus backed by the given store.
// If store is nil, notifications are dispatched to subscribers but not persisted.
func NewBus(store notify.Store) *Bus {
	return &Bus{
		store: store,
		log:   logging.Component("notify-bus"),
	}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish persists a notification and dispatches it to all subscribers.
func (b *Bus) Publish(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	// Persist first so the notification has an ID for subscribers.
	if b.store != nil {
		id, err := b.store.Save(context.Background(), n)
		if err != nil {
			b.log.Error().Err(err).Str("title", n.Title).Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Record persists a notification without dispatching it to subscribers.
func (b *Bus) Record(n notify.Notification) {
	if b.store == nil {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := b.store.Save(context.Background(), n); err != nil {
		b.log.Error().Err(err).Str("title", n.Title).Msg("failed to persist notification")
	}
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(title, format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelError,
		Title:   title,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(title, format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelWarning,
		Title:   title,
		Message: fmt.Sprintf(format, args...),
	})
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(title, format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelInfo,
		Title:   title,
		Message: fmt.Sprintf(format, args...),
	})
}

// History returns all persisted notifications (newest first).
// Returns nil if no store is configured.
func (b *Bus) History(ctx context.Context) ([]notify.Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx)
}

// Clear deletes all persisted notifications.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}

// Prune deletes persisted notifications created before cutoff.
func (b *Bus) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if b.store == nil {
		return 0, nil
	}
	return b.store.Prune(ctx, cutoff)
}
