package service

import (
	"time"

	"taskmanager/internal/models/task"
)

// UpdateOption applies one supplied field to a task. Options are applied in
// the order they arrive, so the caller controls activity-log entry order.
type UpdateOption func(*task.Task)

func WithTitle(title string) UpdateOption {
	return func(t *task.Task) {
		t.Title = title
	}
}

func WithDescription(description string) UpdateOption {
	return func(t *task.Task) {
		t.Description = description
	}
}

// WithStatus changes the status and appends exactly one activity-log entry
// describing the new value.
func WithStatus(status task.Status) UpdateOption {
	return func(t *task.Task) {
		t.Status = status
		t.AppendActivity("Status updated to " + string(status))
	}
}

// WithPriority changes the priority and appends exactly one activity-log
// entry describing the new value.
func WithPriority(priority task.Priority) UpdateOption {
	return func(t *task.Task) {
		t.Priority = priority
		t.AppendActivity("Priority updated to " + string(priority))
	}
}

func WithDueDate(dueDate time.Time) UpdateOption {
	return func(t *task.Task) {
		t.DueDate = &dueDate
	}
}
