package task

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/internal/notify"
	"github.com/taskflow/backend/repository"
	"github.com/taskflow/backend/repository/bolt"
)

// recorderPublisher captures published events; fail makes every publish
// return an error so best-effort semantics can be checked.
type recorderPublisher struct {
	mu     sync.Mutex
	events []notify.Event
	fail   bool
}

func (p *recorderPublisher) Publish(ctx context.Context, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recorderPublisher) recorded() []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.Event, len(p.events))
	copy(out, p.events)
	return out
}

type fixture struct {
	uc    *UseCase
	pub   *recorderPublisher
	redis *miniredis.Miniredis
	tasks repository.TaskRepository
}

func newFixture(t *testing.T, max int) *fixture {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	guard := domain.NewGuard(max)
	pub := &recorderPublisher{}
	taskRepo := bolt.NewTaskRepository(store, guard)
	userRepo := bolt.NewUserRepository(store)

	uc := New(taskRepo, userRepo, cache.New(client, nil), pub, guard, cache.DefaultBoardTTL, nil)
	return &fixture{uc: uc, pub: pub, redis: mr, tasks: taskRepo}
}

func strptr(s string) *string { return &s }

func TestListTasksCachesAndInvalidates(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	created, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "first"})
	require.NoError(t, err)

	tasks, err := f.uc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, f.redis.Exists(cache.BoardKey), "read should populate the snapshot")

	// mutation invalidates, next read reflects the change
	_, _, err = f.uc.UpdateStatus(ctx, created.ID, domain.StatusDone)
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(cache.BoardKey))

	tasks, err = f.uc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.StatusDone, tasks[0].Status)
}

func TestListTasksServesStaleSnapshotUntilInvalidated(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	_, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "first"})
	require.NoError(t, err)

	_, err = f.uc.ListTasks(ctx)
	require.NoError(t, err)

	// write around the use case: the snapshot is stale but still served
	_, err = f.tasks.Create(ctx, &domain.Task{ProjectID: "p1", Title: "sneaky"})
	require.NoError(t, err)

	tasks, err := f.uc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	// the TTL bounds the staleness window
	f.redis.FastForward(cache.DefaultBoardTTL + time.Second)
	tasks, err = f.uc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCreateTaskCapacityRejectionLeavesCacheAlone(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "one", AssigneeID: strptr("u1")})
	require.NoError(t, err)

	_, err = f.uc.ListTasks(ctx)
	require.NoError(t, err)
	require.True(t, f.redis.Exists(cache.BoardKey))

	_, err = f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "two", AssigneeID: strptr("u1")})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeCapacity))

	// a rejected mutation must not invalidate the snapshot
	assert.True(t, f.redis.Exists(cache.BoardKey))
}

func TestUpdateTaskSoftDegradePublishesClearedAssignee(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "holder", AssigneeID: strptr("u1")})
	require.NoError(t, err)
	extra, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "extra"})
	require.NoError(t, err)

	updated, degraded, err := f.uc.UpdateTask(ctx, extra.ID, repository.TaskPatch{
		AssigneeID: strptr("u1"), AssigneeSet: true,
	})
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Nil(t, updated.AssigneeID)

	require.Eventually(t, func() bool {
		for _, e := range f.pub.recorded() {
			if e.Action == notify.ActionUpdated && e.TaskID == extra.ID {
				return e.AssigneeID == nil
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestMutationsSucceedWhenPublisherFails(t *testing.T) {
	f := newFixture(t, 3)
	f.pub.fail = true
	ctx := context.Background()

	created, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "resilient"})
	require.NoError(t, err)

	_, _, err = f.uc.UpdateStatus(ctx, created.ID, domain.StatusInProgress)
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteTask(ctx, created.ID))
}

func TestDeleteTaskInvalidatesCommentsKey(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	created, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "with comments"})
	require.NoError(t, err)

	require.NoError(t, f.redis.Set(cache.CommentsKey(created.ID), "thread"))

	require.NoError(t, f.uc.DeleteTask(ctx, created.ID))
	assert.False(t, f.redis.Exists(cache.CommentsKey(created.ID)))

	require.Eventually(t, func() bool {
		for _, e := range f.pub.recorded() {
			if e.Action == notify.ActionDeleted && e.TaskID == created.ID {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestCheckAssigneeLimit(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	unassigned, err := f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "free"})
	require.NoError(t, err)

	d, err := f.uc.CheckAssigneeLimit(ctx, unassigned.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, "No assignee", d.Reason)

	// park a Done task for a full user, then probe re-activating it
	_, err = f.uc.CreateTask(ctx, &domain.Task{ProjectID: "p1", Title: "active", AssigneeID: strptr("u1")})
	require.NoError(t, err)
	parked, err := f.uc.CreateTask(ctx, &domain.Task{
		ProjectID: "p1", Title: "parked", AssigneeID: strptr("u1"), Status: domain.StatusDone,
	})
	require.NoError(t, err)

	d, err = f.uc.CheckAssigneeLimit(ctx, parked.ID, domain.StatusOpen)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Message)

	// moving further out of the active set is always fine
	d, err = f.uc.CheckAssigneeLimit(ctx, parked.ID, domain.StatusDone)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	_, err = f.uc.CheckAssigneeLimit(ctx, "missing", domain.StatusOpen)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
