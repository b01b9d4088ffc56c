package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskService struct {
	tasks    TaskRepository
	projects ProjectRepository
}

func NewTaskService(tasks TaskRepository, projects ProjectRepository) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

// Create persists a new task after validating the domain invariants:
// priority bounds, start<=due, recurrence value, and that any project,
// parent, or dependency link stays inside the owner's account.
func (s *TaskService) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	t.ID = uuid.New()
	t.Completed = false
	t.ReminderSent = false
	if t.Recurrence == "" {
		t.Recurrence = models.RecurrenceNone
	}

	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", t.ID.String()),
		zap.String("user_id", t.UserID.String()))
	return t, nil
}

func (s *TaskService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	return s.getOwned(ctx, userID, id)
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, options ...models.TaskOption) (*models.Task, error) {
	t, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		opt(t)
	}

	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}
	if err := s.update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("task", id.String())
		}
		return fmt.Errorf("deleting task: %w", err)
	}
	logger.Info("Service: task deleted", zap.String("task_id", id.String()))
	return nil
}

// Complete marks a task done. Open dependencies block completion. For
// recurring tasks the next occurrence is spawned in the same call and
// returned alongside the completed one.
func (s *TaskService) Complete(ctx context.Context, userID, id uuid.UUID) (*models.Task, *models.Task, error) {
	t, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if t.Completed {
		return t, nil, nil
	}

	for _, depID := range t.Dependencies {
		dep, err := s.tasks.GetByID(ctx, depID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, nil, fmt.Errorf("loading dependency: %w", err)
		}
		if !dep.Completed {
			return nil, nil, NewBusinessError(CodeDependency,
				"task has incomplete dependencies",
				ToDetail("dependency_id", dep.ID.String()),
				ToDetail("dependency_title", dep.Title),
			)
		}
	}

	t.Completed = true
	if err := s.update(ctx, t); err != nil {
		return nil, nil, err
	}

	var next *models.Task
	if t.Recurrence != models.RecurrenceNone {
		next = t.NextOccurrence()
		if err := s.tasks.Create(ctx, next); err != nil {
			return nil, nil, fmt.Errorf("spawning next occurrence: %w", err)
		}
		logger.Info("Service: recurring task respawned",
			zap.String("task_id", t.ID.String()),
			zap.String("next_id", next.ID.String()))
	}

	return t, next, nil
}

func (s *TaskService) Reopen(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	t, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !t.Completed {
		return t, nil
	}
	t.Completed = false
	if err := s.update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) update(ctx context.Context, t *models.Task) error {
	if err := s.tasks.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return NewBusinessError(CodeVersionConflict, "task was modified concurrently, reload and retry")
		case errors.Is(err, repository.ErrNotFound):
			return NewNotFound("task", t.ID.String())
		}
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

// getOwned hides other users' tasks behind NOT_FOUND rather than
// admitting they exist.
func (s *TaskService) getOwned(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}
	if t.UserID != userID {
		return nil, NewNotFound("task", id.String())
	}
	return t, nil
}

func (s *TaskService) validate(ctx context.Context, t *models.Task) error {
	if t.Title == "" {
		return NewValidationError("title", "must not be empty")
	}
	if len(t.Title) > 255 {
		return NewValidationError("title", "must be at most 255 characters")
	}
	if t.Priority < models.PriorityNone || t.Priority > models.PriorityHigh {
		return NewValidationError("priority", "must be between 0 and 3")
	}
	if !t.Recurrence.Valid() {
		return NewValidationError("recurrence", "must be one of none, daily, weekly, monthly")
	}
	if t.StartDate != nil && t.DueDate != nil && t.StartDate.After(*t.DueDate) {
		return NewValidationError("start_date", "must not be after due_date")
	}
	if t.ReminderEnabled && t.ReminderTime == nil {
		return NewValidationError("reminder_time", "required when reminder is enabled")
	}

	if t.ProjectID != nil {
		p, err := s.projects.GetByID(ctx, *t.ProjectID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewValidationError("project_id", "project does not exist")
			}
			return fmt.Errorf("loading project: %w", err)
		}
		if p.UserID != t.UserID {
			return NewValidationError("project_id", "project does not exist")
		}
	}

	if t.ParentID != nil {
		if *t.ParentID == t.ID {
			return NewValidationError("parent_id", "task cannot be its own parent")
		}
		parent, err := s.tasks.GetByID(ctx, *t.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewValidationError("parent_id", "parent task does not exist")
			}
			return fmt.Errorf("loading parent task: %w", err)
		}
		if parent.UserID != t.UserID {
			return NewValidationError("parent_id", "parent task does not exist")
		}
	}

	t.Dependencies = dedupIDs(t.Dependencies)
	for _, depID := range t.Dependencies {
		if depID == t.ID {
			return NewValidationError("dependencies", "task cannot depend on itself")
		}
		dep, err := s.tasks.GetByID(ctx, depID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewValidationError("dependencies", fmt.Sprintf("dependency %s does not exist", depID))
			}
			return fmt.Errorf("loading dependency: %w", err)
		}
		if dep.UserID != t.UserID {
			return NewValidationError("dependencies", fmt.Sprintf("dependency %s does not exist", depID))
		}
	}

	return nil
}

// dedupIDs drops repeated dependency IDs, keeping first-seen order.
func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
