package tempo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/colonyops/tempo/internal/core/logging"
	"github.com/colonyops/tempo/internal/core/reminder"
	"github.com/colonyops/tempo/internal/core/task"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// ErrNoIdentity is returned by task operations when nobody is signed in.
var ErrNoIdentity = errors.New("not signed in")

// IdentitySource returns the signed-in identity.
type IdentitySource interface {
	Current() identity.Identity
}

// TaskService is the task mutation surface. Every mutation is persisted
// first and then handed to the reminder sync before returning; reminder
// failures never fail the mutation.
type TaskService struct {
	store    task.Store
	sync     *reminder.Sync
	identity IdentitySource
	log      zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(store task.Store, sync *reminder.Sync, identity IdentitySource, log zerolog.Logger) *TaskService {
	return &TaskService{
		store:    store,
		sync:     sync,
		identity: identity,
		log:      log.With().Str("component", "task-service").Logger(),
	}
}

func (s *TaskService) owner(ctx context.Context) (string, context.Context, error) {
	id := s.identity.Current()
	if id.IsZero() {
		return "", ctx, ErrNoIdentity
	}
	return id.Key(), logging.WithIdentity(ctx, id.Key()), nil
}

// Add validates and persists a new task, then schedules its reminder.
func (s *TaskService) Add(ctx context.Context, t task.Task) (task.Task, error) {
	owner, ctx, err := s.owner(ctx)
	if err != nil {
		return task.Task{}, err
	}

	t.ID = ""
	t.Owner = owner
	t.Title = strings.TrimSpace(t.Title)
	t.Completed = false
	t.CreatedAt = time.Time{}
	t.UpdatedAt = time.Time{}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}

	if err := validateTask(t); err != nil {
		return task.Task{}, err
	}

	if err := s.store.Create(ctx, &t); err != nil {
		return task.Task{}, fmt.Errorf("add task: %w", err)
	}

	s.sync.AfterAdd(ctx, t)
	s.log.Debug().Ctx(logging.WithTaskID(ctx, t.ID)).Msg("task added")

	return t, nil
}

// Update applies a patch to a task and reschedules or cancels its reminder.
func (s *TaskService) Update(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	owner, ctx, err := s.owner(ctx)
	if err != nil {
		return task.Task{}, err
	}

	current, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}

	updated := patch.Apply(current)
	updated.Title = strings.TrimSpace(updated.Title)
	if err := validateTask(updated); err != nil {
		return task.Task{}, err
	}

	if err := s.store.Update(ctx, updated); err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}

	s.sync.AfterUpdate(ctx, updated)
	return s.reload(ctx, owner, updated), nil
}

// Delete removes a task and cancels its reminder.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	owner, ctx, err := s.owner(ctx)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.sync.AfterDelete(ctx, id)
	return nil
}

// ToggleCompletion flips a task's completed flag. Completing cancels the
// reminder; un-completing does not reschedule it.
func (s *TaskService) ToggleCompletion(ctx context.Context, id string) (task.Task, error) {
	owner, ctx, err := s.owner(ctx)
	if err != nil {
		return task.Task{}, err
	}

	current, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("toggle task: %w", err)
	}

	current.Completed = !current.Completed
	if err := s.store.Update(ctx, current); err != nil {
		return task.Task{}, fmt.Errorf("toggle task: %w", err)
	}

	s.sync.AfterToggleComplete(ctx, current)
	return s.reload(ctx, owner, current), nil
}

// ClearAll removes every task of the signed-in identity and cancels every
// pending reminder.
func (s *TaskService) ClearAll(ctx context.Context) (int64, error) {
	owner, ctx, err := s.owner(ctx)
	if err != nil {
		return 0, err
	}

	n, err := s.store.DeleteAll(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("clear tasks: %w", err)
	}

	s.sync.AfterClearAll(ctx)
	return n, nil
}

// Get returns one task of the signed-in identity.
func (s *TaskService) Get(ctx context.Context, id string) (task.Task, error) {
	owner, ctx, err := s.owner(ctx)
	if err != nil {
		return task.Task{}, err
	}
	return s.store.Get(ctx, owner, id)
}

// List returns every task of the signed-in identity.
func (s *TaskService) List(ctx context.Context) ([]task.Task, error) {
	owner, ctx, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, owner)
}

// ByDate returns tasks due on day's UTC calendar date.
func (s *TaskService) ByDate(ctx context.Context, day time.Time) ([]task.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return task.FilterByDate(tasks, day), nil
}

// ByPriority returns tasks with priority p.
func (s *TaskService) ByPriority(ctx context.Context, p task.Priority) ([]task.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return task.FilterByPriority(tasks, p), nil
}

// Load lists the signed-in identity's tasks and schedules their reminders.
// With nobody signed in it does nothing.
func (s *TaskService) Load(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		if errors.Is(err, ErrNoIdentity) {
			return nil, nil
		}
		return nil, err
	}

	_, ctx, _ = s.owner(ctx)
	s.sync.OnLoad(ctx, tasks)
	return tasks, nil
}

// Import adds tasks in order and returns the stored copies. It stops at the
// first invalid task.
func (s *TaskService) Import(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	out := make([]task.Task, 0, len(tasks))
	for i, t := range tasks {
		added, err := s.Add(ctx, t)
		if err != nil {
			return out, fmt.Errorf("import task %d: %w", i, err)
		}
		out = append(out, added)
	}
	return out, nil
}

func (s *TaskService) reload(ctx context.Context, owner string, fallback task.Task) task.Task {
	t, err := s.store.Get(ctx, owner, fallback.ID)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("reload task")
		return fallback
	}
	return t
}

func validateTask(t task.Task) error {
	return criterio.ValidateStruct(
		criterio.Run("title", t.Title, func(v string) error {
			if v == "" {
				return fmt.Errorf("title is required")
			}
			return nil
		}),
		criterio.Run("priority", t.Priority, func(p task.Priority) error {
			if !p.IsValid() {
				return fmt.Errorf("invalid priority %q", p)
			}
			return nil
		}),
	)
}
