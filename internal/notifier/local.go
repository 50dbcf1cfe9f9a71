// Package notifier delivers scheduled notifications inside the running
// process and keeps a history of what was delivered.
package notifier

import (
	"context"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/core/reminder"
	"github.com/colonyops/tempo/pkg/kv"
	"github.com/rs/zerolog"
)

// Config is the process-wide notification policy. It is applied once by Init.
type Config struct {
	// Enabled turns scheduling on. When false every ScheduleAt is a no-op.
	Enabled bool
	// ShowAlert dispatches delivered notifications to bus subscribers.
	// History is recorded either way.
	ShowAlert bool
	// PlaySound writes a terminal bell to Bell on delivery.
	PlaySound bool
	// SetBadge counts delivered notifications until ClearBadge.
	SetBadge bool
	// Bell receives the bell character. Nil disables sound.
	Bell io.Writer
}

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d.
type AfterFunc func(d time.Duration, fn func()) Timer

func stdAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Option configures a Local scheduler.
type Option func(*Local)

// WithNow replaces the time source.
func WithNow(now func() time.Time) Option {
	return func(l *Local) { l.now = now }
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn AfterFunc) Option {
	return func(l *Local) { l.afterFunc = fn }
}

type pending struct {
	timer Timer
	title string
	at    time.Time
}

// Local is an in-process reminder.Scheduler. Pending notifications live only
// as long as the process; callers reschedule on start-up.
type Local struct {
	cfg       Config
	bus       *Bus
	log       zerolog.Logger
	now       func() time.Time
	afterFunc AfterFunc

	mu      sync.Mutex
	pending *kv.Store[string, *pending]
	badge   atomic.Int64
}

var _ reminder.Scheduler = (*Local)(nil)

// Init applies the notification policy and returns the scheduler for it. The
// host calls it once during start-up.
func Init(cfg Config, bus *Bus, log zerolog.Logger, opts ...Option) *Local {
	l := &Local{
		cfg:       cfg,
		bus:       bus,
		log:       log.With().Str("component", "notifier").Logger(),
		now:       time.Now,
		afterFunc: stdAfterFunc,
		pending:   kv.New[string, *pending](),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.log.Debug().
		Bool("enabled", cfg.Enabled).
		Bool("show_alert", cfg.ShowAlert).
		Bool("play_sound", cfg.PlaySound).
		Bool("set_badge", cfg.SetBadge).
		Msg("notification policy initialised")

	return l
}

// ScheduleAt schedules a notification. A nil or past when delivers it now.
// Scheduling an id that is already pending replaces it. The returned handle
// is the id, or empty when notifications are disabled.
func (l *Local) ScheduleAt(ctx context.Context, id string, when *time.Time, title, body string) (string, error) {
	if !l.cfg.Enabled {
		return "", nil
	}

	n := notify.Notification{Level: notify.LevelInfo, Title: title, Message: body}

	var delay time.Duration
	if when != nil {
		delay = when.Sub(l.now())
	}

	if delay <= 0 {
		l.cancel(id)
		l.deliver(n)
		return id, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := &pending{title: title, at: *when}
	entry.timer = l.afterFunc(delay, func() { l.fire(id, entry, n) })

	if prev, replaced := l.pending.Set(id, entry); replaced {
		prev.timer.Stop()
	}

	l.log.Debug().Ctx(ctx).Str("id", id).Time("at", *when).Msg("notification scheduled")
	return id, nil
}

// Cancel stops a pending notification.
func (l *Local) Cancel(_ context.Context, id string) (bool, error) {
	return l.cancel(id), nil
}

// CancelAll stops every pending notification.
func (l *Local) CancelAll(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.pending.Drain() {
		p.timer.Stop()
	}
	return true, nil
}

// Pending returns the ids of scheduled notifications in firing order.
func (l *Local) Pending() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.pending.Keys()
	slices.SortFunc(ids, func(a, b string) int {
		pa, _ := l.pending.Get(a)
		pb, _ := l.pending.Get(b)
		return pa.at.Compare(pb.at)
	})
	return ids
}

// Badge returns the number of notifications delivered since ClearBadge.
func (l *Local) Badge() int64 {
	return l.badge.Load()
}

// ClearBadge resets the badge counter.
func (l *Local) ClearBadge() {
	l.badge.Store(0)
}

// Close stops every pending notification.
func (l *Local) Close() {
	_, _ = l.CancelAll(context.Background())
}

func (l *Local) cancel(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.pending.Take(id)
	if ok {
		p.timer.Stop()
	}
	return ok
}

func (l *Local) fire(id string, entry *pending, n notify.Notification) {
	l.mu.Lock()
	current, ok := l.pending.Get(id)
	if !ok || current != entry {
		// Replaced or cancelled after the timer already fired.
		l.mu.Unlock()
		return
	}
	l.pending.Take(id)
	l.mu.Unlock()

	l.deliver(n)
}

func (l *Local) deliver(n notify.Notification) {
	n.CreatedAt = l.now()

	if l.bus != nil {
		if l.cfg.ShowAlert {
			l.bus.Publish(n)
		} else {
			l.bus.Record(n)
		}
	}

	if l.cfg.PlaySound && l.cfg.Bell != nil {
		if _, err := io.WriteString(l.cfg.Bell, "\a"); err != nil {
			l.log.Warn().Err(err).Msg("play sound")
		}
	}

	if l.cfg.SetBadge {
		l.badge.Add(1)
	}

	l.log.Info().Str("title", n.Title).Msg("notification delivered")
}
