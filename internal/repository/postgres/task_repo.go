package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(s *Storage) *TaskRepo {
	return &TaskRepo{pool: s.pool}
}

const taskColumns = `id, user_id, project_id, parent_id, title, description,
			priority, completed, start_date, due_date, recurrence,
			reminder_enabled, reminder_time, reminder_sent,
			version, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.ProjectID,
		&t.ParentID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Completed,
		&t.StartDate,
		&t.DueDate,
		&t.Recurrence,
		&t.ReminderEnabled,
		&t.ReminderTime,
		&t.ReminderSent,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	start := time.Now()
	defer warnIfSlow("tasks.create", start)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO tasks
			(id, user_id, project_id, parent_id, title, description, priority,
			completed, start_date, due_date, recurrence,
			reminder_enabled, reminder_time, reminder_sent, version, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, NOW())
			RETURNING version, created_at`

	err = tx.QueryRow(ctx, query,
		t.ID,
		t.UserID,
		t.ProjectID,
		t.ParentID,
		t.Title,
		t.Description,
		t.Priority,
		t.Completed,
		t.StartDate,
		t.DueDate,
		t.Recurrence,
		t.ReminderEnabled,
		t.ReminderTime,
		t.ReminderSent,
	).Scan(&t.Version, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting task: %w", translateErr(err))
	}

	if err := replaceDependencies(ctx, tx, t.ID, t.Dependencies); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	start := time.Now()
	defer warnIfSlow("tasks.get_by_id", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("selecting task: %w", translateErr(err))
	}

	deps, err := r.dependenciesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Dependencies = deps
	return t, nil
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, error) {
	start := time.Now()
	defer warnIfSlow("tasks.list", start)

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `SELECT ` + taskColumns + ` FROM tasks
			WHERE user_id = $1
			AND ($2::uuid IS NULL OR project_id = $2)
			AND ($3::uuid IS NULL OR parent_id = $3)
			AND ($4::boolean IS NULL OR completed = $4)
			ORDER BY created_at DESC
			LIMIT $5 OFFSET $6`

	rows, err := r.pool.Query(ctx, query, userID, filter.ProjectID, filter.ParentID, filter.Completed, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("selecting tasks: %w", translateErr(err))
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: scanning task row", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	if err := r.attachDependencies(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update writes every mutable column under optimistic locking. A
// mismatch between the in-memory version and the stored row surfaces
// as ErrVersionConflict.
func (r *TaskRepo) Update(ctx context.Context, t *models.Task) error {
	start := time.Now()
	defer warnIfSlow("tasks.update", start)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE tasks
			SET project_id = $1,
				parent_id = $2,
				title = $3,
				description = $4,
				priority = $5,
				completed = $6,
				start_date = $7,
				due_date = $8,
				recurrence = $9,
				reminder_enabled = $10,
				reminder_time = $11,
				reminder_sent = $12,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $13 AND version = $14
			RETURNING version, updated_at`

	err = tx.QueryRow(ctx, query,
		t.ProjectID,
		t.ParentID,
		t.Title,
		t.Description,
		t.Priority,
		t.Completed,
		t.StartDate,
		t.DueDate,
		t.Recurrence,
		t.ReminderEnabled,
		t.ReminderTime,
		t.ReminderSent,
		t.ID,
		t.Version,
	).Scan(&t.Version, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Repository: task version conflict",
				zap.String("task_id", t.ID.String()),
				zap.Int("expected_version", t.Version))
			return repository.ErrVersionConflict
		}
		return fmt.Errorf("updating task: %w", translateErr(err))
	}

	if err := replaceDependencies(ctx, tx, t.ID, t.Dependencies); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("tasks.delete", start)

	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DueReminders returns tasks whose reminder should fire at or before
// now and has not been turned into a notification yet.
func (r *TaskRepo) DueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Task, error) {
	start := time.Now()
	defer warnIfSlow("tasks.due_reminders", start)

	query := `SELECT ` + taskColumns + ` FROM tasks
			WHERE reminder_enabled
			AND NOT reminder_sent
			AND NOT completed
			AND reminder_time <= $1
			ORDER BY reminder_time
			LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting due reminders: %w", translateErr(err))
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: scanning task row", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return tasks, nil
}

// MarkReminderSent flips reminder_sent under the task's version so two
// worker ticks cannot both claim the same reminder.
func (r *TaskRepo) MarkReminderSent(ctx context.Context, t *models.Task) error {
	start := time.Now()
	defer warnIfSlow("tasks.mark_reminder_sent", start)

	query := `UPDATE tasks
			SET reminder_sent = TRUE,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $1 AND version = $2
			RETURNING version, updated_at`

	err := r.pool.QueryRow(ctx, query, t.ID, t.Version).Scan(&t.Version, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrVersionConflict
		}
		return fmt.Errorf("marking reminder sent: %w", translateErr(err))
	}
	t.ReminderSent = true
	return nil
}

func replaceDependencies(ctx context.Context, tx pgx.Tx, taskID uuid.UUID, deps []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_dependencies WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("clearing dependencies: %w", translateErr(err))
	}
	for _, dep := range deps {
		_, err := tx.Exec(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on_id) VALUES ($1, $2)`,
			taskID, dep)
		if err != nil {
			return fmt.Errorf("inserting dependency: %w", translateErr(err))
		}
	}
	return nil
}

func (r *TaskRepo) dependenciesFor(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT depends_on_id FROM task_dependencies WHERE task_id = $1`, taskID)
	if err != nil {
		return nil, fmt.Errorf("selecting dependencies: %w", translateErr(err))
	}
	defer rows.Close()

	deps := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		deps = append(deps, id)
	}
	return deps, rows.Err()
}

func (r *TaskRepo) attachDependencies(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(tasks))
	byID := make(map[uuid.UUID]*models.Task, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	rows, err := r.pool.Query(ctx,
		`SELECT task_id, depends_on_id FROM task_dependencies WHERE task_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("selecting dependencies: %w", translateErr(err))
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, dep uuid.UUID
		if err := rows.Scan(&taskID, &dep); err != nil {
			return fmt.Errorf("scanning dependency: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.Dependencies = append(t.Dependencies, dep)
		}
	}
	return rows.Err()
}
