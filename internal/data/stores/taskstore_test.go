package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/tempo/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTaskStore(t *testing.T) *TaskStore {
	t.Helper()
	return NewTaskStore(openTestDB(t))
}

func TestTaskStore_CreateFillsDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	tk := &task.Task{Owner: "ann@example.com", Title: "write report"}
	require.NoError(t, store.Create(ctx, tk))

	assert.Len(t, tk.ID, 8)
	assert.Equal(t, task.PriorityMedium, tk.Priority)
	assert.False(t, tk.CreatedAt.IsZero())

	got, err := store.Get(ctx, "ann@example.com", tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
	assert.Nil(t, got.DueDate)
	assert.False(t, got.Reminder)
	assert.False(t, got.Completed)
}

func TestTaskStore_RoundTripsDueDate(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	due := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	tk := &task.Task{
		Owner:       "ann@example.com",
		Title:       "dentist",
		Description: "bring **card**",
		DueDate:     &due,
		Reminder:    true,
		Priority:    task.PriorityHigh,
	}
	require.NoError(t, store.Create(ctx, tk))

	got, err := store.Get(ctx, "ann@example.com", tk.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.True(t, got.Reminder)
	assert.Equal(t, "bring **card**", got.Description)
	assert.Equal(t, task.PriorityHigh, got.Priority)
}

func TestTaskStore_ScopedByOwner(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	a := &task.Task{Owner: "ann@example.com", Title: "a"}
	b := &task.Task{Owner: "bo@example.com", Title: "b"}
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	_, err := store.Get(ctx, "bo@example.com", a.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)

	list, err := store.List(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	err = store.Delete(ctx, "bo@example.com", a.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskStore_ListOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, store.Create(ctx, &task.Task{
			Owner:     "ann@example.com",
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := store.List(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Title)
	assert.Equal(t, "third", list[2].Title)

	empty, err := store.List(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTaskStore_Update(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	due := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tk := &task.Task{Owner: "ann@example.com", Title: "draft", DueDate: &due, Reminder: true}
	require.NoError(t, store.Create(ctx, tk))

	updated := *tk
	updated.Title = "final"
	updated.DueDate = nil
	updated.Completed = true
	require.NoError(t, store.Update(ctx, updated))

	got, err := store.Get(ctx, "ann@example.com", tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Nil(t, got.DueDate)
	assert.True(t, got.Completed)

	missing := updated
	missing.ID = "nope"
	assert.ErrorIs(t, store.Update(ctx, missing), task.ErrNotFound)
}

func TestTaskStore_DeleteAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		tk := &task.Task{Owner: "ann@example.com", Title: title}
		require.NoError(t, store.Create(ctx, tk))
		ids = append(ids, tk.ID)
	}
	require.NoError(t, store.Create(ctx, &task.Task{Owner: "bo@example.com", Title: "keep"}))

	require.NoError(t, store.Delete(ctx, "ann@example.com", ids[0]))
	assert.ErrorIs(t, store.Delete(ctx, "ann@example.com", ids[0]), task.ErrNotFound)

	n, err := store.DeleteAll(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	others, err := store.List(ctx, "bo@example.com")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestTaskStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	require.NoError(t, store.Create(ctx, &task.Task{ID: "fixed", Owner: "ann@example.com", Title: "a"}))
	err := store.Create(ctx, &task.Task{ID: "fixed", Owner: "ann@example.com", Title: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
