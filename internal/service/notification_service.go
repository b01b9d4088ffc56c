package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSnooze = 10 * time.Minute

type NotificationService struct {
	notifications NotificationRepository
}

func NewNotificationService(notifications NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns what the polling client should currently display.
// Notification IDs are stable, so the frontend dedups repeats across
// polls by ID.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	notifications, err := s.notifications.ListVisible(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	n, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	if err := s.notifications.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("marking notification read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Dismiss(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	n, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	n.Dismissed = true
	n.Read = true
	if err := s.notifications.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("dismissing notification: %w", err)
	}
	return n, nil
}

// Snooze hides the notification for the given number of minutes
// without losing it, unlike Dismiss.
func (s *NotificationService) Snooze(ctx context.Context, userID, id uuid.UUID, minutes int) (*models.Notification, error) {
	n, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if minutes < 0 {
		return nil, NewValidationError("minutes", "must not be negative")
	}

	d := time.Duration(minutes) * time.Minute
	if minutes == 0 {
		d = defaultSnooze
	}
	until := time.Now().Add(d)
	n.SnoozedUntil = &until
	if err := s.notifications.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("snoozing notification: %w", err)
	}
	return n, nil
}

// CreateReminder turns a due task reminder into a notification. The
// ExistsForTask check keeps the worker idempotent when a previous tick
// crashed between notification insert and reminder_sent update.
func (s *NotificationService) CreateReminder(ctx context.Context, t *models.Task) (*models.Notification, error) {
	exists, err := s.notifications.ExistsForTask(ctx, t.ID, models.NotificationReminder)
	if err != nil {
		return nil, fmt.Errorf("checking reminder dedup: %w", err)
	}
	if exists {
		logger.Info("Service: reminder already delivered", zap.String("task_id", t.ID.String()))
		return nil, nil
	}

	showAt := time.Now()
	if t.ReminderTime != nil {
		showAt = *t.ReminderTime
	}
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  t.UserID,
		TaskID:  &t.ID,
		Type:    models.NotificationReminder,
		Message: fmt.Sprintf("Reminder: %s", t.Title),
		ShowAt:  showAt,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("creating reminder notification: %w", err)
	}
	return n, nil
}

func (s *NotificationService) getOwned(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("notification", id.String())
		}
		return nil, fmt.Errorf("loading notification: %w", err)
	}
	if n.UserID != userID {
		return nil, NewNotFound("notification", id.String())
	}
	return n, nil
}
