package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/config"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite runs the repositories against a real PostgreSQL in
// a container, with the embedded migrations applied.
type PostgresTestSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	storage   *postgres.Storage

	users         *postgres.UserRepo
	tasks         *postgres.TaskRepo
	projects      *postgres.ProjectRepo
	notifications *postgres.NotificationRepo
	sessions      *postgres.SessionRepo
	tokens        *postgres.ResetTokenRepo
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	databaseURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), postgres.Migrate(databaseURL))

	s.storage, err = postgres.New(s.ctx, config.DatabaseConfig{
		URL:            databaseURL,
		MaxConnections: 5,
		MinConnections: 1,
		IdleTimeout:    time.Minute,
	})
	require.NoError(s.T(), err)

	s.users = postgres.NewUserRepo(s.storage)
	s.tasks = postgres.NewTaskRepo(s.storage)
	s.projects = postgres.NewProjectRepo(s.storage)
	s.notifications = postgres.NewNotificationRepo(s.storage)
	s.sessions = postgres.NewSessionRepo(s.storage)
	s.tokens = postgres.NewResetTokenRepo(s.storage)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func (s *PostgresTestSuite) SetupTest() {
	// users cascades into every other table.
	_, err := s.storage.Pool().Exec(s.ctx, "DELETE FROM users")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) createUser(suffix string) *models.User {
	user := &models.User{
		ID:           uuid.New(),
		Username:     "user_" + suffix,
		Email:        suffix + "@example.com",
		PasswordHash: "$2a$10$fakehashfortesting000000000000000000000000000000000",
	}
	require.NoError(s.T(), s.users.Create(s.ctx, user))
	return user
}

func (s *PostgresTestSuite) createTask(userID uuid.UUID, title string, opts ...func(*models.Task)) *models.Task {
	task := &models.Task{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		Recurrence: models.RecurrenceNone,
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(s.T(), s.tasks.Create(s.ctx, task))
	return task
}

func (s *PostgresTestSuite) TestUserRepo() {
	user := s.createUser("alice")

	got, err := s.users.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("user_alice", got.Username)

	// Lookup by either username or email.
	byName, err := s.users.GetByLogin(s.ctx, "user_alice")
	s.Require().NoError(err)
	s.Equal(user.ID, byName.ID)

	byMail, err := s.users.GetByLogin(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byMail.ID)

	_, err = s.users.GetByLogin(s.ctx, "nobody")
	s.ErrorIs(err, repository.ErrNotFound)

	// Unique constraints surface as ErrDuplicate.
	dup := &models.User{
		ID:           uuid.New(),
		Username:     "user_alice",
		Email:        "other@example.com",
		PasswordHash: "x",
	}
	s.ErrorIs(s.users.Create(s.ctx, dup), repository.ErrDuplicate)

	s.Require().NoError(s.users.UpdatePassword(s.ctx, user.ID, "newhash"))
	got, err = s.users.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("newhash", got.PasswordHash)
}

func (s *PostgresTestSuite) TestTaskRepo_CRUDAndDependencies() {
	user := s.createUser("bob")
	dep := s.createTask(user.ID, "dependency")

	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond)
	task := s.createTask(user.ID, "main", func(t *models.Task) {
		t.Priority = models.PriorityHigh
		t.DueDate = &due
		t.Dependencies = []uuid.UUID{dep.ID}
	})
	s.Equal(1, task.Version)

	got, err := s.tasks.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal("main", got.Title)
	s.Equal(models.PriorityHigh, got.Priority)
	s.Require().NotNil(got.DueDate)
	s.WithinDuration(due, *got.DueDate, time.Millisecond)
	s.Equal([]uuid.UUID{dep.ID}, got.Dependencies)

	got.Title = "renamed"
	got.Dependencies = nil
	s.Require().NoError(s.tasks.Update(s.ctx, got))
	s.Equal(2, got.Version)

	reloaded, err := s.tasks.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal("renamed", reloaded.Title)
	s.Empty(reloaded.Dependencies)

	s.Require().NoError(s.tasks.Delete(s.ctx, task.ID))
	_, err = s.tasks.GetByID(s.ctx, task.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTaskRepo_VersionConflict() {
	user := s.createUser("carol")
	task := s.createTask(user.ID, "contended")

	first, err := s.tasks.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	second, err := s.tasks.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)

	first.Title = "first writer"
	s.Require().NoError(s.tasks.Update(s.ctx, first))

	second.Title = "second writer"
	s.ErrorIs(s.tasks.Update(s.ctx, second), repository.ErrVersionConflict)
}

func (s *PostgresTestSuite) TestTaskRepo_ListFilters() {
	user := s.createUser("dave")
	project := &models.Project{ID: uuid.New(), UserID: user.ID, Name: "P"}
	s.Require().NoError(s.projects.Create(s.ctx, project))

	s.createTask(user.ID, "in project", func(t *models.Task) { t.ProjectID = &project.ID })
	done := s.createTask(user.ID, "done")
	done.Completed = true
	s.Require().NoError(s.tasks.Update(s.ctx, done))

	other := s.createUser("eve")
	s.createTask(other.ID, "not mine")

	all, err := s.tasks.ListByUser(s.ctx, user.ID, models.TaskFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	byProject, err := s.tasks.ListByUser(s.ctx, user.ID, models.TaskFilter{ProjectID: &project.ID})
	s.Require().NoError(err)
	s.Require().Len(byProject, 1)
	s.Equal("in project", byProject[0].Title)

	open := false
	incomplete, err := s.tasks.ListByUser(s.ctx, user.ID, models.TaskFilter{Completed: &open})
	s.Require().NoError(err)
	s.Require().Len(incomplete, 1)
	s.Equal("in project", incomplete[0].Title)
}

func (s *PostgresTestSuite) TestTaskRepo_DueReminders() {
	user := s.createUser("frank")
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	due := s.createTask(user.ID, "due", func(t *models.Task) {
		t.ReminderEnabled = true
		t.ReminderTime = &past
	})
	s.createTask(user.ID, "later", func(t *models.Task) {
		t.ReminderEnabled = true
		t.ReminderTime = &future
	})
	s.createTask(user.ID, "no reminder")

	batch, err := s.tasks.DueReminders(s.ctx, time.Now(), 10)
	s.Require().NoError(err)
	s.Require().Len(batch, 1)
	s.Equal(due.ID, batch[0].ID)

	s.Require().NoError(s.tasks.MarkReminderSent(s.ctx, batch[0]))
	s.True(batch[0].ReminderSent)

	batch, err = s.tasks.DueReminders(s.ctx, time.Now(), 10)
	s.Require().NoError(err)
	s.Empty(batch)
}

func (s *PostgresTestSuite) TestProjectRepo_DeleteKeepsTasks() {
	user := s.createUser("grace")
	project := &models.Project{ID: uuid.New(), UserID: user.ID, Name: "doomed"}
	s.Require().NoError(s.projects.Create(s.ctx, project))

	task := s.createTask(user.ID, "survivor", func(t *models.Task) { t.ProjectID = &project.ID })

	s.Require().NoError(s.projects.Delete(s.ctx, project.ID))

	// ON DELETE SET NULL: the task stays, unassigned.
	got, err := s.tasks.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Nil(got.ProjectID)
}

func (s *PostgresTestSuite) TestNotificationRepo_Visibility() {
	user := s.createUser("heidi")
	task := s.createTask(user.ID, "source")

	visible := &models.Notification{
		ID:      uuid.New(),
		UserID:  user.ID,
		TaskID:  &task.ID,
		Type:    models.NotificationReminder,
		Message: "Reminder: source",
		ShowAt:  time.Now().Add(-time.Minute),
	}
	s.Require().NoError(s.notifications.Create(s.ctx, visible))

	scheduled := &models.Notification{
		ID:      uuid.New(),
		UserID:  user.ID,
		Type:    models.NotificationSystem,
		Message: "later",
		ShowAt:  time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.notifications.Create(s.ctx, scheduled))

	list, err := s.notifications.ListVisible(s.ctx, user.ID, time.Now())
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(visible.ID, list[0].ID)

	exists, err := s.notifications.ExistsForTask(s.ctx, task.ID, models.NotificationReminder)
	s.Require().NoError(err)
	s.True(exists)

	// Dismissing hides it for good.
	list[0].Dismissed = true
	s.Require().NoError(s.notifications.Update(s.ctx, list[0]))

	list, err = s.notifications.ListVisible(s.ctx, user.ID, time.Now())
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *PostgresTestSuite) TestSessionRepo() {
	user := s.createUser("ivan")

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    &user.ID,
		CSRFToken: "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.sessions.Create(s.ctx, session))

	anon := &models.Session{
		ID:        uuid.New(),
		CSRFToken: "anon-tok",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	s.Require().NoError(s.sessions.Create(s.ctx, anon))

	got, err := s.sessions.GetByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal("tok", got.CSRFToken)
	s.Require().NotNil(got.UserID)
	s.Equal(user.ID, *got.UserID)

	pruned, err := s.sessions.DeleteExpired(s.ctx, time.Now())
	s.Require().NoError(err)
	s.EqualValues(1, pruned)

	_, err = s.sessions.GetByID(s.ctx, anon.ID)
	s.ErrorIs(err, repository.ErrNotFound)

	s.Require().NoError(s.sessions.DeleteForUser(s.ctx, user.ID))
	_, err = s.sessions.GetByID(s.ctx, session.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestResetTokenRepo_SingleUse() {
	user := s.createUser("judy")

	token := &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "deadbeef",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.tokens.Create(s.ctx, token))

	got, err := s.tokens.GetByHash(s.ctx, "deadbeef")
	s.Require().NoError(err)
	s.Equal(token.ID, got.ID)
	s.False(got.Used)

	s.Require().NoError(s.tokens.MarkUsed(s.ctx, got))

	// A second consumption attempt loses the race.
	again, err := s.tokens.GetByHash(s.ctx, "deadbeef")
	s.Require().NoError(err)
	s.True(again.Used)
	s.ErrorIs(s.tokens.MarkUsed(s.ctx, again), repository.ErrVersionConflict)
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed tests in short mode")
	}
	suite.Run(t, new(PostgresTestSuite))
}
