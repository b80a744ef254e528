package services

import (
	"context"
	"testing"

	"example.com/backstage/services/picking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTaskCreditsXPTimesQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	taskType, err := env.tasks.CreateTaskType(ctx, TaskTypeInput{Name: "Restock shelf", XP: 100})
	require.NoError(t, err)
	assert.True(t, taskType.Active)

	entry, err := env.tasks.LogTask(ctx, bruno, LogTaskInput{TaskTypeID: taskType.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 300, entry.XPEarned)
	assert.Equal(t, "Restock shelf", entry.TaskName)

	u := env.user(t, bruno.UID)
	assert.Equal(t, int64(300), u.XPTotal)
	assert.Equal(t, 1, u.Streak)

	logs, err := env.tasks.ListTaskLogs(ctx, bruno.UID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestLogTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	inactive := false
	taskType, err := env.tasks.CreateTaskType(ctx, TaskTypeInput{Name: "Inventory", XP: 20, Active: &inactive})
	require.NoError(t, err)

	_, err = env.tasks.LogTask(ctx, bruno, LogTaskInput{TaskTypeID: taskType.ID, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = env.tasks.LogTask(ctx, bruno, LogTaskInput{TaskTypeID: taskType.ID, Quantity: 0})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.tasks.LogTask(ctx, bruno, LogTaskInput{TaskTypeID: "missing", Quantity: 1})
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(0), env.user(t, bruno.UID).XPTotal)
}

func TestTaskTypeCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	taskType, err := env.tasks.CreateTaskType(ctx, TaskTypeInput{Name: "Cleaning", XP: 10})
	require.NoError(t, err)

	_, err = env.tasks.CreateTaskType(ctx, TaskTypeInput{XP: 10})
	require.ErrorIs(t, err, domain.ErrValidation)

	inactive := false
	updated, err := env.tasks.UpdateTaskType(ctx, taskType.ID, TaskTypeInput{Name: "Deep cleaning", XP: 25, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Deep cleaning", updated.Name)
	assert.Equal(t, 25, updated.XP)
	assert.False(t, updated.Active)

	active, err := env.tasks.ListTaskTypes(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := env.tasks.ListTaskTypes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, env.tasks.DeleteTaskType(ctx, taskType.ID))
	require.ErrorIs(t, env.tasks.DeleteTaskType(ctx, taskType.ID), domain.ErrNotFound)
	_, err = env.tasks.UpdateTaskType(ctx, taskType.ID, TaskTypeInput{Name: "x", XP: 1})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
