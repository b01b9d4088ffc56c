// Package dto holds the request and response shapes of the JSON API.
package dto

import (
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirm struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateTaskRequest struct {
	Title           string      `json:"title" validate:"required,max=255"`
	Description     string      `json:"description"`
	Priority        int         `json:"priority" validate:"gte=0,lte=3"`
	ProjectID       *uuid.UUID  `json:"project_id"`
	ParentID        *uuid.UUID  `json:"parent_id"`
	StartDate       *time.Time  `json:"start_date"`
	DueDate         *time.Time  `json:"due_date"`
	Recurrence      string      `json:"recurrence"`
	ReminderEnabled bool        `json:"reminder_enabled"`
	ReminderTime    *time.Time  `json:"reminder_time"`
	Dependencies    []uuid.UUID `json:"dependencies"`
}

// UpdateTaskRequest is all pointers so absent fields stay untouched.
type UpdateTaskRequest struct {
	Title           *string      `json:"title,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Priority        *int         `json:"priority,omitempty"`
	ProjectID       *uuid.UUID   `json:"project_id,omitempty"`
	ClearProject    bool         `json:"clear_project,omitempty"`
	ParentID        *uuid.UUID   `json:"parent_id,omitempty"`
	ClearParent     bool         `json:"clear_parent,omitempty"`
	StartDate       *time.Time   `json:"start_date,omitempty"`
	ClearStartDate  bool         `json:"clear_start_date,omitempty"`
	DueDate         *time.Time   `json:"due_date,omitempty"`
	ClearDueDate    bool         `json:"clear_due_date,omitempty"`
	Recurrence      *string      `json:"recurrence,omitempty"`
	ReminderEnabled *bool        `json:"reminder_enabled,omitempty"`
	ReminderTime    *time.Time   `json:"reminder_time,omitempty"`
	Dependencies    *[]uuid.UUID `json:"dependencies,omitempty"`
}

type ProjectRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type SnoozeRequest struct {
	Minutes int `json:"minutes" validate:"gte=0"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type TaskResponse struct {
	ID              uuid.UUID   `json:"id"`
	ProjectID       *uuid.UUID  `json:"project_id,omitempty"`
	ParentID        *uuid.UUID  `json:"parent_id,omitempty"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Priority        int         `json:"priority"`
	Completed       bool        `json:"completed"`
	StartDate       *time.Time  `json:"start_date,omitempty"`
	DueDate         *time.Time  `json:"due_date,omitempty"`
	Recurrence      string      `json:"recurrence"`
	ReminderEnabled bool        `json:"reminder_enabled"`
	ReminderTime    *time.Time  `json:"reminder_time,omitempty"`
	Dependencies    []uuid.UUID `json:"dependencies"`
	Version         int         `json:"version"`
	IsOverdue       bool        `json:"is_overdue"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
}

func FromTask(t *models.Task) TaskResponse {
	deps := t.Dependencies
	if deps == nil {
		deps = []uuid.UUID{}
	}
	return TaskResponse{
		ID:              t.ID,
		ProjectID:       t.ProjectID,
		ParentID:        t.ParentID,
		Title:           t.Title,
		Description:     t.Description,
		Priority:        t.Priority,
		Completed:       t.Completed,
		StartDate:       t.StartDate,
		DueDate:         t.DueDate,
		Recurrence:      string(t.Recurrence),
		ReminderEnabled: t.ReminderEnabled,
		ReminderTime:    t.ReminderTime,
		Dependencies:    deps,
		Version:         t.Version,
		IsOverdue:       !t.Completed && t.DueDate != nil && t.DueDate.Before(time.Now()),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func FromTaskList(tasks []*models.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type ProjectResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func FromProject(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromProjectList(projects []*models.Project) []ProjectResponse {
	result := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		result[i] = FromProject(p)
	}
	return result
}

type NotificationResponse struct {
	ID           uuid.UUID  `json:"id"`
	TaskID       *uuid.UUID `json:"task_id,omitempty"`
	Type         string     `json:"type"`
	Message      string     `json:"message"`
	Read         bool       `json:"read"`
	Dismissed    bool       `json:"dismissed"`
	ShowAt       time.Time  `json:"show_at"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func FromNotification(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		TaskID:       n.TaskID,
		Type:         string(n.Type),
		Message:      n.Message,
		Read:         n.Read,
		Dismissed:    n.Dismissed,
		ShowAt:       n.ShowAt,
		SnoozedUntil: n.SnoozedUntil,
		CreatedAt:    n.CreatedAt,
	}
}

func FromNotificationList(notifications []*models.Notification) []NotificationResponse {
	result := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		result[i] = FromNotification(n)
	}
	return result
}
