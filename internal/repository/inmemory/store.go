// Package inmemory holds map-backed repositories with the same method
// sets as the postgres package. They back the service unit tests and
// local runs without a database.
package inmemory

import (
	"sort"
	"sync"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/google/uuid"
)

type UserStorage struct {
	mtx   sync.RWMutex
	users map[uuid.UUID]*models.User
}

func NewUserStorage() *UserStorage {
	return &UserStorage{users: make(map[uuid.UUID]*models.User)}
}

type TaskStorage struct {
	mtx           sync.RWMutex
	tasks         map[uuid.UUID]*models.Task
	notifications *NotificationStorage
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{tasks: make(map[uuid.UUID]*models.Task)}
}

// LinkNotifications makes Delete cascade to task-linked notifications,
// matching the ON DELETE CASCADE foreign key.
func (s *TaskStorage) LinkNotifications(notifications *NotificationStorage) {
	s.notifications = notifications
}

type ProjectStorage struct {
	mtx      sync.RWMutex
	projects map[uuid.UUID]*models.Project
	tasks    *TaskStorage
}

func NewProjectStorage() *ProjectStorage {
	return &ProjectStorage{projects: make(map[uuid.UUID]*models.Project)}
}

// LinkTasks makes Delete null surviving tasks' project_id, matching
// the ON DELETE SET NULL foreign key.
func (s *ProjectStorage) LinkTasks(tasks *TaskStorage) {
	s.tasks = tasks
}

type NotificationStorage struct {
	mtx           sync.RWMutex
	notifications map[uuid.UUID]*models.Notification
}

func NewNotificationStorage() *NotificationStorage {
	return &NotificationStorage{notifications: make(map[uuid.UUID]*models.Notification)}
}

type SessionStorage struct {
	mtx      sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{sessions: make(map[uuid.UUID]*models.Session)}
}

type ResetTokenStorage struct {
	mtx    sync.RWMutex
	tokens map[uuid.UUID]*models.PasswordResetToken
}

func NewResetTokenStorage() *ResetTokenStorage {
	return &ResetTokenStorage{tokens: make(map[uuid.UUID]*models.PasswordResetToken)}
}

func copyTask(t *models.Task) *models.Task {
	clone := *t
	clone.Dependencies = append([]uuid.UUID(nil), t.Dependencies...)
	return &clone
}

func sortTasksNewestFirst(tasks []*models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

func ptrTimeAfter(t *time.Time, now time.Time) bool {
	return t != nil && t.After(now)
}
