package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/repository"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func strptr(s string) *string { return &s }

func statusPtr(s domain.Status) *domain.Status { return &s }

func mustCreate(t *testing.T, repo repository.TaskRepository, task domain.Task) *domain.Task {
	t.Helper()
	created, err := repo.Create(context.Background(), &task)
	require.NoError(t, err)
	return created
}

func TestTaskCreateValidation(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(3))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Task{Title: "no project"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = repo.Create(ctx, &domain.Task{ProjectID: "p1"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = repo.Create(ctx, &domain.Task{ProjectID: "p1", Title: "t", Status: "Archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	created := mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "defaults"})
	assert.Equal(t, domain.StatusOpen, created.Status)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestTaskCreateCapacityHardReject(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(2))
	ctx := context.Background()

	mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "one", AssigneeID: strptr("u1")})
	mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "two", AssigneeID: strptr("u1"), Status: domain.StatusInProgress})

	_, err := repo.Create(ctx, &domain.Task{ProjectID: "p1", Title: "three", AssigneeID: strptr("u1")})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeCapacity))

	// nothing was stored for the rejected task
	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	// a Done task never counts against capacity
	done := mustCreate(t, repo, domain.Task{
		ProjectID: "p1", Title: "done", AssigneeID: strptr("u1"), Status: domain.StatusDone,
	})
	assert.Equal(t, domain.StatusDone, done.Status)
}

func TestTaskUpdateSoftDegrade(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(2))
	ctx := context.Background()

	mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "one", AssigneeID: strptr("u1")})
	mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "two", AssigneeID: strptr("u1")})
	victim := mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "three"})

	// assigning a full user via update succeeds with the assignee cleared
	updated, degraded, err := repo.Update(ctx, victim.ID, repository.TaskPatch{
		AssigneeID: strptr("u1"), AssigneeSet: true,
	})
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Nil(t, updated.AssigneeID)

	count, err := repo.ActiveCount(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTaskUpdateSelfExclusion(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(1))
	ctx := context.Background()

	task := mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "solo", AssigneeID: strptr("u1")})

	// moving the only active task between active columns must not count
	// the task against its own assignee
	updated, degraded, err := repo.UpdateStatus(ctx, task.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.False(t, degraded)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, "u1", *updated.AssigneeID)
}

func TestTaskUpdateStatusIdempotent(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(1))
	ctx := context.Background()

	task := mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "solo", AssigneeID: strptr("u1")})

	before, err := repo.ActiveCount(ctx, "u1", "")
	require.NoError(t, err)

	updated, degraded, err := repo.UpdateStatus(ctx, task.ID, task.Status)
	require.NoError(t, err)
	assert.False(t, degraded)
	require.NotNil(t, updated.AssigneeID)

	after, err := repo.ActiveCount(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTaskUpdateTitleOnlySkipsGuard(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Seed two active tasks for u1 under a permissive limit, then lower
	// the limit. A title-only edit must not clear the now-over-capacity
	// assignee; only status/assignee patches consult the guard.
	seed := NewTaskRepository(store, domain.NewGuard(5))
	task := mustCreate(t, seed, domain.Task{ProjectID: "p1", Title: "first", AssigneeID: strptr("u1")})
	mustCreate(t, seed, domain.Task{ProjectID: "p1", Title: "second", AssigneeID: strptr("u1")})

	strict := NewTaskRepository(store, domain.NewGuard(1))
	updated, degraded, err := strict.Update(ctx, task.ID, repository.TaskPatch{
		Title: strptr("renamed"),
	})
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, "u1", *updated.AssigneeID)

	// the same patch with a status change does consult the guard
	_, degraded, err = strict.Update(ctx, task.ID, repository.TaskPatch{
		Status: statusPtr(domain.StatusInProgress),
	})
	require.NoError(t, err)
	assert.True(t, degraded)
}

func TestTaskEndToEndCapacityScenario(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(1))
	ctx := context.Background()

	t1 := mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "T1", AssigneeID: strptr("u1")})

	count, err := repo.ActiveCount(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = repo.Create(ctx, &domain.Task{ProjectID: "p1", Title: "T2", AssigneeID: strptr("u1")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeCapacity))

	_, degraded, err := repo.UpdateStatus(ctx, t1.ID, domain.StatusDone)
	require.NoError(t, err)
	assert.False(t, degraded)

	t3 := mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "T3", AssigneeID: strptr("u1")})
	require.NotNil(t, t3.AssigneeID)
	assert.Equal(t, "u1", *t3.AssigneeID)
}

func TestTaskUpdateNotFoundAndEmptyPatch(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(3))
	ctx := context.Background()

	_, _, err := repo.Update(ctx, "missing", repository.TaskPatch{Title: strptr("x")})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, _, err = repo.Update(ctx, "missing", repository.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestTaskDelete(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(3))
	ctx := context.Background()

	task := mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "gone", AssigneeID: strptr("u1")})
	require.NoError(t, repo.Delete(ctx, task.ID))

	_, err := repo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	// the deleted task no longer counts toward capacity
	count, err := repo.ActiveCount(ctx, "u1", "")
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Delete(ctx, task.ID), domain.ErrTaskNotFound)
}

func TestTaskListByProjectOrder(t *testing.T) {
	repo := NewTaskRepository(openTestStore(t), domain.NewGuard(3))
	ctx := context.Background()

	mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "a"})
	mustCreate(t, repo, domain.Task{ProjectID: "p2", Title: "b"})
	mustCreate(t, repo, domain.Task{ProjectID: "p1", Title: "c"})

	tasks, err := repo.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, "p1", task.ProjectID)
	}
	assert.False(t, tasks[0].CreatedAt.Before(tasks[1].CreatedAt))
}
