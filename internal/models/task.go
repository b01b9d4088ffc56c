package models

import (
	"time"

	"github.com/google/uuid"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Next advances t by one recurrence interval. For RecurrenceNone the
// input is returned unchanged.
func (r Recurrence) Next(t time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t
}

const (
	PriorityNone = 0
	PriorityLow  = 1
	PriorityMed  = 2
	PriorityHigh = 3
)

// TaskFilter narrows task listings. Nil pointer fields are ignored.
type TaskFilter struct {
	ProjectID *uuid.UUID
	ParentID  *uuid.UUID
	Completed *bool
	Page      int
	Limit     int
}

type Task struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"user_id" db:"user_id"`
	ProjectID       *uuid.UUID  `json:"project_id,omitempty" db:"project_id"`
	ParentID        *uuid.UUID  `json:"parent_id,omitempty" db:"parent_id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description" db:"description"`
	Priority        int         `json:"priority" db:"priority"`
	Completed       bool        `json:"completed" db:"completed"`
	StartDate       *time.Time  `json:"start_date,omitempty" db:"start_date"`
	DueDate         *time.Time  `json:"due_date,omitempty" db:"due_date"`
	Recurrence      Recurrence  `json:"recurrence" db:"recurrence"`
	ReminderEnabled bool        `json:"reminder_enabled" db:"reminder_enabled"`
	ReminderTime    *time.Time  `json:"reminder_time,omitempty" db:"reminder_time"`
	ReminderSent    bool        `json:"reminder_sent" db:"reminder_sent"`
	Dependencies    []uuid.UUID `json:"dependencies,omitempty" db:"-"`
	Version         int         `json:"version" db:"version"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty" db:"updated_at"`
}

// NextOccurrence builds the follow-up task spawned when a recurring
// task is completed. Dates and the reminder advance by one interval,
// completion state resets.
func (t *Task) NextOccurrence() *Task {
	next := *t
	next.ID = uuid.New()
	next.Completed = false
	next.ReminderSent = false
	next.Version = 1
	next.UpdatedAt = nil
	if t.StartDate != nil {
		d := t.Recurrence.Next(*t.StartDate)
		next.StartDate = &d
	}
	if t.DueDate != nil {
		d := t.Recurrence.Next(*t.DueDate)
		next.DueDate = &d
	}
	if t.ReminderTime != nil {
		d := t.Recurrence.Next(*t.ReminderTime)
		next.ReminderTime = &d
	}
	deps := make([]uuid.UUID, len(t.Dependencies))
	copy(deps, t.Dependencies)
	next.Dependencies = deps
	return &next
}
