package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationReminder NotificationType = "reminder"
	NotificationSystem   NotificationType = "system"
)

type Notification struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	UserID       uuid.UUID        `json:"user_id" db:"user_id"`
	TaskID       *uuid.UUID       `json:"task_id,omitempty" db:"task_id"`
	Type         NotificationType `json:"type" db:"notif_type"`
	Message      string           `json:"message" db:"message"`
	Read         bool             `json:"read" db:"read"`
	Dismissed    bool             `json:"dismissed" db:"dismissed"`
	ShowAt       time.Time        `json:"show_at" db:"show_at"`
	SnoozedUntil *time.Time       `json:"snoozed_until,omitempty" db:"snoozed_until"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// VisibleAt reports whether the notification should be delivered to a
// polling client at the given moment. Dismissed notifications never
// surface again; snoozing pushes visibility forward without losing the
// original show_at.
func (n *Notification) VisibleAt(now time.Time) bool {
	if n.Dismissed {
		return false
	}
	if n.ShowAt.After(now) {
		return false
	}
	if n.SnoozedUntil != nil && n.SnoozedUntil.After(now) {
		return false
	}
	return true
}
