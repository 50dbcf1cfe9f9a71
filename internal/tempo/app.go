// Package tempo wires the timer engine, task service and notification
// delivery into one application object for the CLI and TUI.
package tempo

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/colonyops/tempo/internal/core/clock"
	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/core/effects"
	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/colonyops/tempo/internal/core/pomodoro"
	"github.com/colonyops/tempo/internal/core/reminder"
	"github.com/colonyops/tempo/internal/data/db"
	"github.com/colonyops/tempo/internal/data/stores"
	"github.com/colonyops/tempo/internal/notifier"
	"github.com/rs/zerolog"
)

// App is the central entry point for all tempo operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config   *config.Config
	DB       *db.DB
	Engine   *pomodoro.Engine
	Tasks    *TaskService
	Notifier *notifier.Local
	Bus      *notifier.Bus

	identities *IdentityStore
	effects    *effects.Queue
	clock      *clock.Clock
	log        zerolog.Logger

	mu      sync.RWMutex
	current identity.Identity
	armed   bool
}

var _ IdentitySource = (*App)(nil)

// NewApp constructs an App on an open database. bell receives the terminal
// bell when sounds are enabled; it may be nil.
func NewApp(cfg *config.Config, database *db.DB, bell io.Writer, log zerolog.Logger) *App {
	kvStore := stores.NewKVStore(database)

	bus := notifier.NewBus(stores.NewNotifyStore(database))
	local := notifier.Init(notifier.Config{
		Enabled:   cfg.Notifications.Enabled,
		ShowAlert: cfg.Notifications.ShowAlert,
		PlaySound: cfg.Notifications.PlaySound,
		SetBadge:  cfg.Notifications.SetBadge,
		Bell:      bell,
	}, bus, log)

	fx := effects.NewQueue(log)
	clk := clock.New(clock.WithInterval(cfg.TickInterval))

	app := &App{
		Config:     cfg,
		DB:         database,
		Notifier:   local,
		Bus:        bus,
		identities: NewIdentityStore(kvStore),
		effects:    fx,
		clock:      clk,
		log:        log.With().Str("component", "app").Logger(),
	}

	app.Engine = pomodoro.NewEngine(
		pomodoro.NewStore(kvStore, cfg.Pomodoro, log),
		local,
		clk,
		fx,
		cfg.Pomodoro,
		log,
	)
	app.Tasks = NewTaskService(
		stores.NewTaskStore(database),
		reminder.NewSync(local, log),
		app,
		log,
	)

	return app
}

// Current returns the signed-in identity.
func (a *App) Current() identity.Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Restore loads the stored identity and switches the engine to it. A failed
// load starts signed out.
func (a *App) Restore(ctx context.Context) identity.Identity {
	id, err := a.identities.Load(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("restore identity, starting signed out")
		id = identity.Identity{}
	}

	a.switchTo(ctx, id)
	return id
}

// ArmReminders schedules reminders for every task of the signed-in identity.
// Only long-running hosts need this; pending reminders die with the process.
func (a *App) ArmReminders(ctx context.Context) error {
	a.mu.Lock()
	a.armed = true
	a.mu.Unlock()

	if _, err := a.Tasks.Load(ctx); err != nil {
		return fmt.Errorf("arm reminders: %w", err)
	}
	return nil
}

// Login stores id as the signed-in identity and loads its state.
func (a *App) Login(ctx context.Context, id identity.Identity) error {
	if id.IsZero() {
		return fmt.Errorf("login: email is required")
	}

	if err := a.identities.Save(ctx, id); err != nil {
		return err
	}

	a.switchTo(ctx, id)
	a.Bus.Infof("Signed in", "Settings, tasks and session counts are saved for %s.", id)
	return nil
}

// Logout forgets the signed-in identity and cancels its reminders.
func (a *App) Logout(ctx context.Context) error {
	if err := a.identities.Clear(ctx); err != nil {
		return err
	}

	a.switchTo(ctx, identity.Identity{})
	return nil
}

func (a *App) switchTo(ctx context.Context, id identity.Identity) {
	a.mu.Lock()
	prev := a.current
	a.current = id
	armed := a.armed
	a.mu.Unlock()

	if prev != id && !prev.IsZero() {
		_, _ = a.Notifier.CancelAll(ctx)
	}

	a.Engine.SetIdentity(ctx, id)

	if armed && prev != id {
		if _, err := a.Tasks.Load(ctx); err != nil {
			a.log.Error().Err(err).Msg("reload reminders")
			a.Bus.Errorf("Reminders", "Task reminders could not be reloaded: %v", err)
		}
	}
}

// Close stops the timer, runs pending side effects and stops notifications.
func (a *App) Close() {
	a.Engine.Close()
	a.effects.Close()
	a.Notifier.Close()
}
