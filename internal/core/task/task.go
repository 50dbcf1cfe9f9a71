// Package task defines the task record consumed by reminder scheduling and
// the helpers the calendar and list views derive from a task collection.
package task

import (
	"slices"
	"strings"
	"time"
)

// Priority ranks a task for list grouping.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Task is a single to-do item owned by an identity.
type Task struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Reminder    bool       `json:"reminder"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// WantsReminder reports whether the task asks for a reminder at all.
// Due-in-the-past and completion are judged at scheduling time.
func (t Task) WantsReminder() bool {
	return t.Reminder && t.DueDate != nil
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	Reminder     *bool      `json:"reminder,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
}

// Apply returns a copy of t with the patch applied.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Reminder != nil {
		t.Reminder = *p.Reminder
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}

// FilterByDate returns the tasks due on the same UTC calendar day as day.
func FilterByDate(tasks []Task, day time.Time) []Task {
	want := day.UTC().Format(time.DateOnly)

	var out []Task
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if t.DueDate.UTC().Format(time.DateOnly) == want {
			out = append(out, t)
		}
	}
	return out
}

// FilterByPriority returns the tasks with priority p. An empty p returns all tasks.
func FilterByPriority(tasks []Task, p Priority) []Task {
	if p == "" {
		return tasks
	}

	var out []Task
	for _, t := range tasks {
		if t.Priority == p {
			out = append(out, t)
		}
	}
	return out
}

// SortForList orders open tasks before completed ones, then by priority and
// due date; tasks without a due date sort last within their priority.
func SortForList(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
			return d
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return strings.Compare(a.Title, b.Title)
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	})
}
