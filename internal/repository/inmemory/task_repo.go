package inmemory

import (
	"context"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
)

func (s *TaskStorage) Create(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return repository.ErrDuplicate
	}
	t.Version = 1
	t.CreatedAt = time.Now()
	s.tasks[t.ID] = copyTask(t)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTask(t), nil
}

func (s *TaskStorage) ListByUser(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*models.Task{}
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.ParentID != nil && (t.ParentID == nil || *t.ParentID != *filter.ParentID) {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		tasks = append(tasks, copyTask(t))
	}
	sortTasksNewestFirst(tasks)

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(tasks) {
		return []*models.Task{}, nil
	}
	end := offset + limit
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[offset:end], nil
}

func (s *TaskStorage) Update(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != t.Version {
		return repository.ErrVersionConflict
	}
	t.Version++
	now := time.Now()
	t.UpdatedAt = &now
	s.tasks[t.ID] = copyTask(t)
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}

	// Cascade the way the schema does: the whole subtask tree goes
	// with the parent, dependency links on survivors are dropped, and
	// notifications on removed tasks disappear.
	removed := map[uuid.UUID]struct{}{id: {}}
	delete(s.tasks, id)
	for {
		found := false
		for childID, child := range s.tasks {
			if child.ParentID == nil {
				continue
			}
			if _, gone := removed[*child.ParentID]; gone {
				removed[childID] = struct{}{}
				delete(s.tasks, childID)
				found = true
			}
		}
		if !found {
			break
		}
	}
	for _, t := range s.tasks {
		deps := t.Dependencies[:0]
		for _, dep := range t.Dependencies {
			if _, gone := removed[dep]; !gone {
				deps = append(deps, dep)
			}
		}
		t.Dependencies = deps
	}
	if s.notifications != nil {
		s.notifications.deleteForTasks(removed)
	}
	return nil
}

// clearProject nulls project_id on every task of a removed project.
func (s *TaskStorage) clearProject(projectID uuid.UUID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, t := range s.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			t.ProjectID = nil
		}
	}
}

func (s *TaskStorage) DueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*models.Task{}
	for _, t := range s.tasks {
		if !t.ReminderEnabled || t.ReminderSent || t.Completed {
			continue
		}
		if t.ReminderTime == nil || ptrTimeAfter(t.ReminderTime, now) {
			continue
		}
		tasks = append(tasks, copyTask(t))
		if len(tasks) >= limit {
			break
		}
	}
	return tasks, nil
}

func (s *TaskStorage) MarkReminderSent(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != t.Version {
		return repository.ErrVersionConflict
	}
	stored.ReminderSent = true
	stored.Version++
	now := time.Now()
	stored.UpdatedAt = &now
	t.ReminderSent = true
	t.Version = stored.Version
	return nil
}
