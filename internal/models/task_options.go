package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskOption mutates a task during an update. Handlers translate the
// fields present in a PUT body into options so the service only
// touches what the client actually sent.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(t *Task) {
		t.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(t *Task) {
		t.Description = description
	}
}

func WithPriority(priority int) TaskOption {
	return func(t *Task) {
		t.Priority = priority
	}
}

func WithProject(projectID *uuid.UUID) TaskOption {
	return func(t *Task) {
		t.ProjectID = projectID
	}
}

func WithParent(parentID *uuid.UUID) TaskOption {
	return func(t *Task) {
		t.ParentID = parentID
	}
}

func WithStartDate(start *time.Time) TaskOption {
	return func(t *Task) {
		t.StartDate = start
	}
}

func WithDueDate(due *time.Time) TaskOption {
	return func(t *Task) {
		t.DueDate = due
	}
}

func WithRecurrence(r Recurrence) TaskOption {
	return func(t *Task) {
		t.Recurrence = r
	}
}

func WithReminder(enabled bool, at *time.Time) TaskOption {
	return func(t *Task) {
		t.ReminderEnabled = enabled
		t.ReminderTime = at
		t.ReminderSent = false
	}
}

func WithDependencies(deps []uuid.UUID) TaskOption {
	return func(t *Task) {
		t.Dependencies = deps
	}
}
