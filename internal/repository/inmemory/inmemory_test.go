package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/models"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository/inmemory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(userID uuid.UUID, title string) *models.Task {
	return &models.Task{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		Recurrence: models.RecurrenceNone,
	}
}

func TestTaskStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	task := newTask(uuid.New(), "t")

	require.NoError(t, store.Create(ctx, task))
	assert.Equal(t, 1, task.Version)

	got, err := store.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)

	// The stored copy is independent of the returned one.
	got.Title = "mutated"
	again, err := store.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", again.Title)

	assert.ErrorIs(t, store.Create(ctx, task), repository.ErrDuplicate)
	_, err = store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskStorage_Update_VersionConflict(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	task := newTask(uuid.New(), "t")
	require.NoError(t, store.Create(ctx, task))

	first, err := store.GetByID(ctx, task.ID)
	require.NoError(t, err)
	second, err := store.GetByID(ctx, task.ID)
	require.NoError(t, err)

	first.Title = "winner"
	require.NoError(t, store.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Title = "loser"
	assert.ErrorIs(t, store.Update(ctx, second), repository.ErrVersionConflict)
}

func TestTaskStorage_Delete_Cascades(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	notifications := inmemory.NewNotificationStorage()
	store.LinkNotifications(notifications)
	userID := uuid.New()

	parent := newTask(userID, "parent")
	require.NoError(t, store.Create(ctx, parent))

	child := newTask(userID, "child")
	child.ParentID = &parent.ID
	require.NoError(t, store.Create(ctx, child))

	grandchild := newTask(userID, "grandchild")
	grandchild.ParentID = &child.ID
	require.NoError(t, store.Create(ctx, grandchild))

	dependent := newTask(userID, "dependent")
	dependent.Dependencies = []uuid.UUID{parent.ID, child.ID}
	require.NoError(t, store.Create(ctx, dependent))

	require.NoError(t, notifications.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		TaskID:  &grandchild.ID,
		Type:    models.NotificationReminder,
		Message: "soon",
		ShowAt:  time.Now(),
	}))

	require.NoError(t, store.Delete(ctx, parent.ID))

	_, err := store.GetByID(ctx, child.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.GetByID(ctx, grandchild.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	survivor, err := store.GetByID(ctx, dependent.ID)
	require.NoError(t, err)
	assert.Empty(t, survivor.Dependencies)

	exists, err := notifications.ExistsForTask(ctx, grandchild.ID, models.NotificationReminder)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProjectStorage_Delete_NullsTaskProject(t *testing.T) {
	ctx := context.Background()
	tasks := inmemory.NewTaskStorage()
	projects := inmemory.NewProjectStorage()
	projects.LinkTasks(tasks)
	userID := uuid.New()

	project := &models.Project{ID: uuid.New(), UserID: userID, Name: "Inbox"}
	require.NoError(t, projects.Create(ctx, project))

	task := newTask(userID, "filed")
	task.ProjectID = &project.ID
	require.NoError(t, tasks.Create(ctx, task))

	require.NoError(t, projects.Delete(ctx, project.ID))

	survivor, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, survivor.ProjectID)
}

func TestTaskStorage_ListByUser_Pagination(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Create(ctx, newTask(userID, "t")))
	}

	page1, err := store.ListByUser(ctx, userID, models.TaskFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page3, err := store.ListByUser(ctx, userID, models.TaskFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	beyond, err := store.ListByUser(ctx, userID, models.TaskFilter{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestTaskStorage_DueReminders(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	userID := uuid.New()
	now := time.Now()
	past := now.Add(-time.Minute)

	due := newTask(userID, "due")
	due.ReminderEnabled = true
	due.ReminderTime = &past
	require.NoError(t, store.Create(ctx, due))

	sent := newTask(userID, "already sent")
	sent.ReminderEnabled = true
	sent.ReminderTime = &past
	sent.ReminderSent = true
	require.NoError(t, store.Create(ctx, sent))

	completed := newTask(userID, "completed")
	completed.ReminderEnabled = true
	completed.ReminderTime = &past
	completed.Completed = true
	require.NoError(t, store.Create(ctx, completed))

	batch, err := store.DueReminders(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, due.ID, batch[0].ID)

	require.NoError(t, store.MarkReminderSent(ctx, batch[0]))
	assert.True(t, batch[0].ReminderSent)
	assert.Equal(t, 2, batch[0].Version)

	batch, err = store.DueReminders(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestUserStorage_Uniqueness(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewUserStorage()

	alice := &models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	require.NoError(t, store.Create(ctx, alice))

	sameName := &models.User{ID: uuid.New(), Username: "alice", Email: "other@example.com"}
	assert.ErrorIs(t, store.Create(ctx, sameName), repository.ErrDuplicate)

	sameMail := &models.User{ID: uuid.New(), Username: "bob", Email: "alice@example.com"}
	assert.ErrorIs(t, store.Create(ctx, sameMail), repository.ErrDuplicate)
}

func TestSessionStorage_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewSessionStorage()
	now := time.Now()

	live := &models.Session{ID: uuid.New(), CSRFToken: "a", ExpiresAt: now.Add(time.Hour)}
	dead := &models.Session{ID: uuid.New(), CSRFToken: "b", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, dead))

	removed, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = store.GetByID(ctx, live.ID)
	assert.NoError(t, err)
	_, err = store.GetByID(ctx, dead.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResetTokenStorage_MarkUsedOnce(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewResetTokenStorage()

	token := &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		TokenHash: "cafe",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, token))

	got, err := store.GetByHash(ctx, "cafe")
	require.NoError(t, err)

	require.NoError(t, store.MarkUsed(ctx, got))
	assert.ErrorIs(t, store.MarkUsed(ctx, got), repository.ErrVersionConflict)
}
