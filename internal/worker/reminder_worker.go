package worker

import (
	"context"
	"errors"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/service"
	"go.uber.org/zap"
)

// Notifier is the slice of the notification service the worker needs.
type Notifier interface {
	CreateReminder(ctx context.Context, t *models.Task) (*models.Notification, error)
}

// ReminderWorker periodically turns due task reminders into
// notifications and prunes expired sessions. Delivery to the browser
// stays pull-based: clients poll /api/notifications.
type ReminderWorker struct {
	tasks     service.TaskRepository
	sessions  service.SessionRepository
	notifier  Notifier
	interval  time.Duration
	batchSize int
}

func NewReminderWorker(tasks service.TaskRepository, sessions service.SessionRepository, notifier Notifier, interval time.Duration, batchSize int) *ReminderWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ReminderWorker{
		tasks:     tasks,
		sessions:  sessions,
		notifier:  notifier,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: reminder loop started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ticker.C:
			w.Tick(ctx)
		case <-ctx.Done():
			logger.Info("Worker: reminder loop stopping")
			return
		}
	}
}

// Tick runs one pass. Version conflicts on reminder_sent are expected
// when an API update races the worker; the task is simply retried on
// the next tick, and the notification-side dedup keeps that safe.
func (w *ReminderWorker) Tick(ctx context.Context) {
	start := time.Now()

	due, err := w.tasks.DueReminders(ctx, time.Now(), w.batchSize)
	if err != nil {
		logger.Warn("Worker: loading due reminders", zap.Error(err))
		return
	}

	delivered := 0
	for _, t := range due {
		if _, err := w.notifier.CreateReminder(ctx, t); err != nil {
			logger.Warn("Worker: creating reminder notification",
				zap.Error(err),
				zap.String("task_id", t.ID.String()))
			continue
		}
		if err := w.tasks.MarkReminderSent(ctx, t); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				logger.Info("Worker: reminder_sent raced an update, retrying next tick",
					zap.String("task_id", t.ID.String()))
				continue
			}
			logger.Warn("Worker: marking reminder sent",
				zap.Error(err),
				zap.String("task_id", t.ID.String()))
			continue
		}
		delivered++
	}

	pruned, err := w.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		logger.Warn("Worker: pruning sessions", zap.Error(err))
	}

	logger.Info("Worker: tick finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("due", len(due)),
		zap.Int("delivered", delivered),
		zap.Int64("sessions_pruned", pruned),
	)
}
