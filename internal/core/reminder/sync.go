package reminder

import (
	"context"
	"time"

	"github.com/colonyops/tempo/internal/core/logging"
	"github.com/colonyops/tempo/internal/core/task"
	"github.com/rs/zerolog"
)

// Sync schedules and cancels task reminders after task mutations.
//
// A task has a pending reminder only when its reminder flag is set, it has a
// due date in the future at scheduling time, and it is not completed.
// Scheduler failures are logged and never returned; the task mutation that
// triggered them stands.
type Sync struct {
	scheduler Scheduler
	now       func() time.Time
	log       zerolog.Logger
}

// SyncOption configures a Sync.
type SyncOption func(*Sync)

// WithNow replaces the time source used for the past-due check.
func WithNow(now func() time.Time) SyncOption {
	return func(s *Sync) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSync creates a Sync.
func NewSync(scheduler Scheduler, log zerolog.Logger, opts ...SyncOption) *Sync {
	s := &Sync{
		scheduler: scheduler,
		now:       time.Now,
		log:       log.With().Str("component", "reminder-sync").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AfterAdd schedules a reminder for a newly added task.
func (s *Sync) AfterAdd(ctx context.Context, t task.Task) {
	if t.WantsReminder() && !t.Completed {
		s.schedule(ctx, t)
	}
}

// AfterUpdate reschedules the task's reminder, or cancels it when the task no
// longer asks for one.
func (s *Sync) AfterUpdate(ctx context.Context, t task.Task) {
	if t.WantsReminder() && !t.Completed && s.inFuture(*t.DueDate) {
		s.schedule(ctx, t)
		return
	}
	s.cancel(ctx, t.ID)
}

// AfterDelete cancels the task's reminder.
func (s *Sync) AfterDelete(ctx context.Context, taskID string) {
	s.cancel(ctx, taskID)
}

// AfterToggleComplete cancels the reminder of a task that became completed.
// Un-completing a task does not schedule anything.
func (s *Sync) AfterToggleComplete(ctx context.Context, t task.Task) {
	if t.Completed {
		s.cancel(ctx, t.ID)
	}
}

// AfterClearAll cancels every pending reminder.
func (s *Sync) AfterClearAll(ctx context.Context) {
	if _, err := s.scheduler.CancelAll(ctx); err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("cancel all reminders")
	}
}

// OnLoad schedules reminders for every eligible task after a bulk load.
func (s *Sync) OnLoad(ctx context.Context, tasks []task.Task) {
	scheduled := 0
	for _, t := range tasks {
		if t.WantsReminder() && !t.Completed && s.schedule(ctx, t) {
			scheduled++
		}
	}
	s.log.Debug().Ctx(ctx).Int("tasks", len(tasks)).Int("scheduled", scheduled).Msg("reminders restored")
}

// schedule replaces any pending reminder for t. Past due dates are skipped
// without touching the scheduler.
func (s *Sync) schedule(ctx context.Context, t task.Task) bool {
	ctx = logging.WithTaskID(ctx, t.ID)

	due := *t.DueDate
	if !s.inFuture(due) {
		s.log.Debug().Ctx(ctx).Time("due", due).Msg("reminder skipped: due date passed")
		return false
	}

	id := TaskReminderID(t.ID)
	if _, err := s.scheduler.Cancel(ctx, id); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("cancel previous reminder")
	}

	body := t.Description
	if body == "" {
		body = DefaultBody
	}

	if _, err := s.scheduler.ScheduleAt(ctx, id, &due, Title(t.Title), body); err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("schedule reminder")
		return false
	}

	s.log.Debug().Ctx(ctx).Time("due", due).Msg("reminder scheduled")
	return true
}

func (s *Sync) cancel(ctx context.Context, taskID string) {
	ctx = logging.WithTaskID(ctx, taskID)
	if _, err := s.scheduler.Cancel(ctx, TaskReminderID(taskID)); err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("cancel reminder")
	}
}

func (s *Sync) inFuture(t time.Time) bool {
	return t.After(s.now())
}
