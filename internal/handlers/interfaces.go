package handlers

import (
	"context"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/google/uuid"
)

// Service contracts consumed by the handlers, declared here so tests
// can substitute mocks.

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, *models.Session, error)
	Login(ctx context.Context, login, password string, oldSessionID *uuid.UUID) (*models.User, *models.Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	EnsureSession(ctx context.Context, sessionID *uuid.UUID) (*models.Session, bool, error)
	CurrentUser(ctx context.Context, session *models.Session) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type TaskService interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, options ...models.TaskOption) (*models.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Complete(ctx context.Context, userID, id uuid.UUID) (*models.Task, *models.Task, error)
	Reopen(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
}

type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, name, description string) (*models.Project, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	Update(ctx context.Context, userID, id uuid.UUID, name, description string) (*models.Project, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error)
	Dismiss(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error)
	Snooze(ctx context.Context, userID, id uuid.UUID, minutes int) (*models.Notification, error)
}

// HealthChecker is what the health endpoint pings, usually the
// postgres storage.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
