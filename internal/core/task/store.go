package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a task does not exist for the owner.
var ErrNotFound = errors.New("task not found")

// Store persists tasks per owner.
type Store interface {
	// Create persists a new task. The store fills ID, Priority, CreatedAt and
	// UpdatedAt when they are unset and writes them back into t.
	Create(ctx context.Context, t *Task) error

	// Get returns a task by owner and ID, or ErrNotFound.
	Get(ctx context.Context, owner, id string) (Task, error)

	// List returns every task of owner ordered by creation time.
	List(ctx context.Context, owner string) ([]Task, error)

	// Update replaces a stored task, or returns ErrNotFound.
	Update(ctx context.Context, t Task) error

	// Delete removes a task, or returns ErrNotFound.
	Delete(ctx context.Context, owner, id string) error

	// DeleteAll removes every task of owner and returns how many were removed.
	DeleteAll(ctx context.Context, owner string) (int64, error)
}
