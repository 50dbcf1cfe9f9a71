// Package reminder keeps per-task notification scheduling consistent with
// task data.
package reminder

import (
	"context"
	"time"
)

// Scheduler is the notification side channel. Implementations own delivery;
// callers only schedule and cancel by id.
type Scheduler interface {
	// ScheduleAt schedules a notification under id. A nil when fires
	// immediately. The returned handle is implementation defined.
	ScheduleAt(ctx context.Context, id string, when *time.Time, title, body string) (string, error)

	// Cancel removes a pending notification and reports whether one existed.
	Cancel(ctx context.Context, id string) (bool, error)

	// CancelAll removes every pending notification.
	CancelAll(ctx context.Context) (bool, error)
}

// TaskReminderID is the scheduler id used for a task's reminder.
func TaskReminderID(taskID string) string {
	return "task-" + taskID
}

// DefaultBody is used when a task has no description.
const DefaultBody = "Time to get it done!"

// Title is the notification title for a task reminder.
func Title(taskTitle string) string {
	return "Reminder: " + taskTitle
}
