package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/google/uuid"
)

func (s *NotificationStorage) Create(ctx context.Context, n *models.Notification) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.notifications[n.ID]; exists {
		return repository.ErrDuplicate
	}
	n.CreatedAt = time.Now()
	clone := *n
	s.notifications[n.ID] = &clone
	return nil
}

func (s *NotificationStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (s *NotificationStorage) ListVisible(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Notification, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	notifications := []*models.Notification{}
	for _, n := range s.notifications {
		if n.UserID != userID || !n.VisibleAt(now) {
			continue
		}
		clone := *n
		notifications = append(notifications, &clone)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].ShowAt.After(notifications[j].ShowAt)
	})
	return notifications, nil
}

func (s *NotificationStorage) Update(ctx context.Context, n *models.Notification) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.notifications[n.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *n
	s.notifications[n.ID] = &clone
	return nil
}

func (s *NotificationStorage) deleteForTasks(taskIDs map[uuid.UUID]struct{}) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for id, n := range s.notifications {
		if n.TaskID == nil {
			continue
		}
		if _, gone := taskIDs[*n.TaskID]; gone {
			delete(s.notifications, id)
		}
	}
}

func (s *NotificationStorage) ExistsForTask(ctx context.Context, taskID uuid.UUID, notifType models.NotificationType) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, n := range s.notifications {
		if n.TaskID != nil && *n.TaskID == taskID && n.Type == notifType {
			return true, nil
		}
	}
	return false, nil
}
