package pomodoro

import (
	"context"
	"sync"

	"github.com/colonyops/tempo/internal/core/effects"
	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/colonyops/tempo/internal/core/logging"
	"github.com/colonyops/tempo/internal/core/reminder"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Persistence loads and saves per-identity timer state.
type Persistence interface {
	LoadSettings(ctx context.Context, identity string) (Settings, error)
	SaveSettings(ctx context.Context, identity string, s Settings) error
	LoadSessions(ctx context.Context, identity string) (int, error)
	SaveSessions(ctx context.Context, identity string, n int) error
	ClearSessions(ctx context.Context, identity string) error
}

// Ticker is the session clock driving the countdown. See clock.Clock.
type Ticker interface {
	Arm(fn func(gen uint64))
	Disarm()
	Current(gen uint64) bool
	Wait()
}

// Effects runs side effects off the engine lock in submission order. Flush
// blocks until everything submitted so far has run.
type Effects interface {
	Submit(name string, fn effects.Job)
	Flush()
}

// Snapshot is the observable timer state.
type Snapshot struct {
	Running           bool        `json:"isRunning"`
	TimeLeftSeconds   int         `json:"timeLeftSeconds"`
	Session           SessionType `json:"currentSession"`
	SessionsCompleted int         `json:"sessionsCompleted"`
}

// Alert texts for natural session completion.
const (
	WorkDoneTitle  = "Work session completed!"
	WorkDoneBody   = "Time for a break."
	BreakDoneTitle = "Break completed!"
	BreakDoneBody  = "Time to get back to work."
)

// Engine is the pomodoro state machine. All commands and ticks are
// serialised by a single mutex; persistence and alerts are handed to Effects
// and never run under it.
type Engine struct {
	store     Persistence
	scheduler reminder.Scheduler
	clock     Ticker
	fx        Effects
	defaults  Settings
	log       zerolog.Logger

	mu       sync.Mutex
	identity identity.Identity
	settings Settings
	state    Snapshot
	loadSeq  uint64
	subs     []chan Snapshot
	closed   bool
}

// NewEngine creates a paused engine in a work session with defaults and no
// identity. Call SetIdentity to load persisted state.
func NewEngine(store Persistence, scheduler reminder.Scheduler, clock Ticker, fx Effects, defaults Settings, log zerolog.Logger) *Engine {
	if defaults.Validate() != nil {
		defaults = DefaultSettings()
	}

	e := &Engine{
		store:     store,
		scheduler: scheduler,
		clock:     clock,
		fx:        fx,
		defaults:  defaults,
		log:       log.With().Str("component", "pomodoro").Logger(),
		settings:  defaults,
	}
	e.state = Snapshot{
		Session:         Work,
		TimeLeftSeconds: defaults.Seconds(Work),
	}
	return e
}

// Start runs the countdown. No-op when already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.state.Running {
		return
	}
	e.startLocked()
	e.emitLocked()
}

// Pause stops the countdown. No-op when already paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || !e.state.Running {
		return
	}
	e.stopLocked()
	e.emitLocked()
}

// Reset stops the countdown and returns to a full work session. The
// completed session count is kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.stopLocked()
	e.enterLocked(Work)
	e.emitLocked()
}

// ResetAll is Reset that also zeroes the completed session count and removes
// it from storage.
func (e *Engine) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.stopLocked()
	e.enterLocked(Work)
	e.state.SessionsCompleted = 0

	if id := e.identity; !id.IsZero() {
		e.submit("clear-sessions", id, func(ctx context.Context) error {
			return e.store.ClearSessions(ctx, id.Key())
		})
	}
	e.emitLocked()
}

// Skip stops the countdown and moves to target, or to the session that would
// follow a natural completion when target is nil. Skipping never counts a
// work session and never alerts.
func (e *Engine) Skip(target *SessionType) error {
	if target != nil && !target.IsValid() {
		return ErrInvalidSession
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.stopLocked()

	next := Work
	switch {
	case target != nil:
		next = *target
	case e.state.Session == Work:
		next = e.settings.NextAfterWork(e.state.SessionsCompleted)
	}

	e.enterLocked(next)
	e.emitLocked()
	return nil
}

// UpdateSettings validates and applies s. While paused the remaining time is
// re-derived from the new durations; a running countdown is left alone and
// the new length applies from the next session. Invalid settings return a
// *ValidationError and change nothing.
func (e *Engine) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		e.log.Debug().Err(err).Msg("settings rejected")
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.settings = s

	if id := e.identity; !id.IsZero() {
		e.submit("save-settings", id, func(ctx context.Context) error {
			return e.store.SaveSettings(ctx, id.Key(), s)
		})
	}

	if !e.state.Running {
		e.state.TimeLeftSeconds = s.Seconds(e.state.Session)
	}

	e.emitLocked()
	return nil
}

// SetIdentity switches to id: the timer stops and returns to a full work
// session, and settings and the completed count are reloaded for id. A zero
// identity uses defaults and persists nothing. Load failures are logged and
// fall back to defaults.
func (e *Engine) SetIdentity(ctx context.Context, id identity.Identity) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.loadSeq++
	seq := e.loadSeq
	e.mu.Unlock()

	// Writes for the previous identity must land before its state is read back.
	if e.fx != nil {
		e.fx.Flush()
	}

	settings, completed := e.load(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()

	// A later SetIdentity owns the state.
	if e.closed || seq != e.loadSeq {
		return
	}

	e.stopLocked()
	e.identity = id
	e.settings = settings
	e.state.SessionsCompleted = completed
	e.enterLocked(Work)
	e.emitLocked()
}

func (e *Engine) load(ctx context.Context, id identity.Identity) (Settings, int) {
	if id.IsZero() || e.store == nil {
		return e.defaults, 0
	}

	ctx = logging.WithIdentity(ctx, id.Key())

	settings, err := e.store.LoadSettings(ctx, id.Key())
	if err != nil {
		e.log.Error().Ctx(ctx).Err(err).Msg("load settings, using defaults")
		settings = e.defaults
	}

	completed, err := e.store.LoadSessions(ctx, id.Key())
	if err != nil {
		e.log.Error().Ctx(ctx).Err(err).Msg("load completed sessions")
		completed = 0
	}

	return settings, completed
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Settings returns the settings in effect.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Identity returns the identity whose state is loaded.
func (e *Engine) Identity() identity.Identity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// Subscribe returns a channel receiving a snapshot after every transition,
// starting with the current one. A slow subscriber only misses intermediate
// snapshots; the most recent one is always delivered. The channel is closed
// by Close.
func (e *Engine) Subscribe(buffer int) <-chan Snapshot {
	if buffer < 1 {
		buffer = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Snapshot, buffer)
	if e.closed {
		close(ch)
		return ch
	}

	ch <- e.state
	e.subs = append(e.subs, ch)
	return ch
}

// Close stops the clock, waits for in-flight ticks and closes subscriber
// channels. The engine ignores every command afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.state.Running = false
	e.clock.Disarm()
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
	e.mu.Unlock()

	e.clock.Wait()
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Ticks from an arming that was disarmed under the lock are stale.
	if e.closed || !e.state.Running || !e.clock.Current(gen) {
		return
	}

	e.state.TimeLeftSeconds--
	if e.state.TimeLeftSeconds < 1 {
		e.state.TimeLeftSeconds = 0
		e.stopLocked()
		e.completeLocked()
	}

	e.emitLocked()
}

func (e *Engine) completeLocked() {
	finished := e.state.Session

	if finished == Work {
		e.state.SessionsCompleted++
		completed := e.state.SessionsCompleted

		if id := e.identity; !id.IsZero() {
			e.submit("save-sessions", id, func(ctx context.Context) error {
				return e.store.SaveSessions(ctx, id.Key(), completed)
			})
		}
		e.alertLocked(WorkDoneTitle, WorkDoneBody)

		e.enterLocked(e.settings.NextAfterWork(completed))
		if e.settings.AutoStartBreaks {
			e.startLocked()
		}
	} else {
		e.alertLocked(BreakDoneTitle, BreakDoneBody)

		e.enterLocked(Work)
		if e.settings.AutoStartWork {
			e.startLocked()
		}
	}

	e.log.Debug().
		Str("finished", string(finished)).
		Str("next", string(e.state.Session)).
		Int("completed", e.state.SessionsCompleted).
		Msg("session completed")
}

func (e *Engine) alertLocked(title, body string) {
	if !e.settings.NotificationsEnabled || e.scheduler == nil {
		return
	}

	alertID := "pomodoro-" + uuid.NewString()
	e.submit("session-alert", e.identity, func(ctx context.Context) error {
		_, err := e.scheduler.ScheduleAt(ctx, alertID, nil, title, body)
		return err
	})
}

func (e *Engine) startLocked() {
	e.state.Running = true
	e.clock.Arm(e.onTick)
}

func (e *Engine) stopLocked() {
	e.state.Running = false
	e.clock.Disarm()
}

func (e *Engine) enterLocked(s SessionType) {
	e.state.Session = s
	e.state.TimeLeftSeconds = e.settings.Seconds(s)
}

func (e *Engine) submit(name string, id identity.Identity, fn effects.Job) {
	if e.fx == nil {
		return
	}
	e.fx.Submit(name, func(ctx context.Context) error {
		return fn(logging.WithIdentity(ctx, id.Key()))
	})
}

// emitLocked fans the current state out to subscribers without blocking. A
// full channel has its oldest snapshot replaced.
func (e *Engine) emitLocked() {
	snap := e.state
	for _, ch := range e.subs {
		select {
		case ch <- snap:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}

		select {
		case ch <- snap:
		default:
		}
	}
}
