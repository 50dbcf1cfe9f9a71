package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/data/db"
	"github.com/colonyops/tempo/pkg/randid"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `id, owner, title, description, due_date, reminder, completed, priority, created_at, updated_at`

// Create persists a new task, filling ID, priority and timestamps when unset.
func (s *TaskStore) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = randid.Generate(8)
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Owner, t.Title, toNullString(t.Description), toNullTime(t.DueDate),
		boolToInt(t.Reminder), boolToInt(t.Completed), string(t.Priority),
		t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("create task %q: duplicate id", t.ID)
		}
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

// Get returns a single task by owner and ID.
func (s *TaskStore) Get(ctx context.Context, owner, id string) (task.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner = ? AND id = ?`, owner, id)

	t, err := scanTask(row)
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}

	return t, nil
}

// List returns every task of owner ordered by created_at ASC.
func (s *TaskStore) List(ctx context.Context, owner string) ([]task.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks scan: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Update replaces a stored task and bumps its updated_at.
func (s *TaskStore) Update(ctx context.Context, t task.Task) error {
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}

	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, reminder = ?, completed = ?, priority = ?, updated_at = ?
		WHERE owner = ? AND id = ?`,
		t.Title, toNullString(t.Description), toNullTime(t.DueDate),
		boolToInt(t.Reminder), boolToInt(t.Completed), string(t.Priority),
		time.Now().UnixNano(), t.Owner, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return requireAffected(res, task.ErrNotFound)
}

// Delete removes a task.
func (s *TaskStore) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return requireAffected(res, task.ErrNotFound)
}

// DeleteAll removes every task of owner.
func (s *TaskStore) DeleteAll(ctx context.Context, owner string) (int64, error) {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE owner = ?`, owner)
	if err != nil {
		return 0, fmt.Errorf("delete all tasks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all tasks: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var (
		t                task.Task
		description      sql.NullString
		due              sql.NullInt64
		reminder, done   int
		priority         string
		created, updated int64
	)

	if err := row.Scan(&t.ID, &t.Owner, &t.Title, &description, &due,
		&reminder, &done, &priority, &created, &updated); err != nil {
		return task.Task{}, err
	}

	t.Description = fromNullString(description)
	t.DueDate = fromNullTime(due)
	t.Reminder = reminder != 0
	t.Completed = done != 0
	t.Priority = task.Priority(priority)
	t.CreatedAt = time.Unix(0, created).UTC()
	t.UpdatedAt = time.Unix(0, updated).UTC()

	return t, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
