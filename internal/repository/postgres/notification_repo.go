package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(s *Storage) *NotificationRepo {
	return &NotificationRepo{pool: s.pool}
}

const notificationColumns = `id, user_id, task_id, notif_type, message,
			read, dismissed, show_at, snoozed_until, created_at`

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	start := time.Now()
	defer warnIfSlow("notifications.create", start)

	query := `INSERT INTO notifications
			(id, user_id, task_id, notif_type, message, read, dismissed, show_at, snoozed_until, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		n.ID,
		n.UserID,
		n.TaskID,
		n.Type,
		n.Message,
		n.Read,
		n.Dismissed,
		n.ShowAt,
		n.SnoozedUntil,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", translateErr(err))
	}
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	start := time.Now()
	defer warnIfSlow("notifications.get_by_id", start)

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n := &models.Notification{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.TaskID,
		&n.Type,
		&n.Message,
		&n.Read,
		&n.Dismissed,
		&n.ShowAt,
		&n.SnoozedUntil,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting notification: %w", translateErr(err))
	}
	return n, nil
}

// ListVisible returns the notifications a polling client should see
// right now: not dismissed, show_at reached, snooze elapsed.
func (r *NotificationRepo) ListVisible(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Notification, error) {
	start := time.Now()
	defer warnIfSlow("notifications.list_visible", start)

	query := `SELECT ` + notificationColumns + ` FROM notifications
			WHERE user_id = $1
			AND NOT dismissed
			AND show_at <= $2
			AND (snoozed_until IS NULL OR snoozed_until <= $2)
			ORDER BY show_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("selecting notifications: %w", translateErr(err))
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.TaskID,
			&n.Type,
			&n.Message,
			&n.Read,
			&n.Dismissed,
			&n.ShowAt,
			&n.SnoozedUntil,
			&n.CreatedAt,
		)
		if err != nil {
			logger.Warn("Repository: scanning notification row", zap.Error(err))
			continue
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification rows: %w", err)
	}
	return notifications, nil
}

func (r *NotificationRepo) Update(ctx context.Context, n *models.Notification) error {
	start := time.Now()
	defer warnIfSlow("notifications.update", start)

	query := `UPDATE notifications
			SET read = $1, dismissed = $2, snoozed_until = $3
			WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, n.Read, n.Dismissed, n.SnoozedUntil, n.ID)
	if err != nil {
		return fmt.Errorf("updating notification: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExistsForTask reports whether a reminder notification was already
// generated for the task. The worker uses it as a dedup backstop when
// a version conflict left reminder_sent unset.
func (r *NotificationRepo) ExistsForTask(ctx context.Context, taskID uuid.UUID, notifType models.NotificationType) (bool, error) {
	start := time.Now()
	defer warnIfSlow("notifications.exists_for_task", start)

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE task_id = $1 AND notif_type = $2)`,
		taskID, notifType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking notification existence: %w", translateErr(err))
	}
	return exists, nil
}
