package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository/inmemory"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := service.NewProjectService(inmemory.NewProjectStorage())
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, "Work", "everything job-related")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.GetByID(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", got.Name)

	updated, err := svc.Update(ctx, userID, created.ID, "Job", "")
	require.NoError(t, err)
	assert.Equal(t, "Job", updated.Name)
	assert.Empty(t, updated.Description)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, userID, created.ID))
	_, err = svc.GetByID(ctx, userID, created.ID)
	assertBusinessCode(t, err, service.CodeNotFound)
}

func TestProjectService_NameValidation(t *testing.T) {
	ctx := context.Background()
	svc := service.NewProjectService(inmemory.NewProjectStorage())
	userID := uuid.New()

	_, err := svc.Create(ctx, userID, "", "")
	assertBusinessCode(t, err, service.CodeValidation)

	_, err = svc.Create(ctx, userID, strings.Repeat("x", 101), "")
	assertBusinessCode(t, err, service.CodeValidation)
}

func TestProjectService_OwnershipHidden(t *testing.T) {
	ctx := context.Background()
	svc := service.NewProjectService(inmemory.NewProjectStorage())

	created, err := svc.Create(ctx, uuid.New(), "Private", "")
	require.NoError(t, err)

	intruder := uuid.New()
	_, err = svc.GetByID(ctx, intruder, created.ID)
	assertBusinessCode(t, err, service.CodeNotFound)

	err = svc.Delete(ctx, intruder, created.ID)
	assertBusinessCode(t, err, service.CodeNotFound)
}
