package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/internal/notify"
	"github.com/taskflow/backend/repository"
)

const publishTimeout = 5 * time.Second

// UseCase orchestrates the task write path: authoritative repository write,
// then cache invalidation, then best-effort event publish. The repository is
// the only step whose failure aborts the request.
type UseCase struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	cache     *cache.BoardCache
	publisher notify.Publisher
	guard     domain.Guard
	boardTTL  time.Duration
	logger    *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	boardCache *cache.BoardCache,
	publisher notify.Publisher,
	guard domain.Guard,
	boardTTL time.Duration,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if boardTTL <= 0 {
		boardTTL = cache.DefaultBoardTTL
	}
	return &UseCase{
		tasks:     tasks,
		users:     users,
		cache:     boardCache,
		publisher: publisher,
		guard:     guard,
		boardTTL:  boardTTL,
		logger:    logger,
	}
}

// MaxActive exposes the configured capacity limit for handler messages.
func (uc *UseCase) MaxActive() int {
	return uc.guard.Max
}

// ListTasks serves the full task list through the board cache. A miss
// recomputes from the repository and repopulates the snapshot.
func (uc *UseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if raw, ok := uc.cache.Get(ctx, cache.BoardKey); ok {
		var tasks []domain.Task
		if err := json.Unmarshal(raw, &tasks); err == nil {
			return tasks, nil
		}
		uc.logger.Warn("discarding malformed board cache snapshot")
	}

	tasks, err := uc.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	if snapshot, err := json.Marshal(tasks); err == nil {
		uc.cache.Put(ctx, cache.BoardKey, snapshot, uc.boardTTL)
	}
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	return uc.tasks.ListByProject(ctx, projectID)
}

// CreateTask inserts the task. A target assignee already at capacity is a
// hard rejection: a brand-new task has no prior state to fall back to.
func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, cache.BoardKey)
	uc.publish(notify.ActionCreated, created)
	return created, nil
}

// UpdateTask merges the patch. When the guard rejects the assignment the task
// is still updated with the assignee cleared and degraded is true, so status
// transitions are never blocked by a capacity fact about the target assignee.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch repository.TaskPatch) (*domain.Task, bool, error) {
	updated, degraded, err := uc.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, false, err
	}
	uc.cache.Invalidate(ctx, cache.BoardKey)
	uc.publish(notify.ActionUpdated, updated)
	return updated, degraded, nil
}

// UpdateStatus changes only the status, with the same soft-degrade rule when
// the task re-enters the active set.
func (uc *UseCase) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, bool, error) {
	updated, degraded, err := uc.tasks.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, false, err
	}
	uc.cache.Invalidate(ctx, cache.BoardKey)
	uc.publish(notify.ActionStatusChanged, updated)
	return updated, degraded, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, cache.BoardKey, cache.CommentsKey(id))
	uc.publish(notify.ActionDeleted, task)
	return nil
}

// LimitDecision is the advisory answer of the capacity probe.
type LimitDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// CheckAssigneeLimit answers "would moving this task to newStatus be allowed"
// without committing anything. The answer is advisory only; the repository
// re-checks authoritatively at commit time.
func (uc *UseCase) CheckAssigneeLimit(ctx context.Context, taskID string, newStatus domain.Status) (*LimitDecision, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID == nil {
		return &LimitDecision{Allowed: true, Reason: "No assignee"}, nil
	}

	count, err := uc.tasks.ActiveCount(ctx, *task.AssigneeID, taskID)
	if err != nil {
		return nil, err
	}

	// Only a move that brings an inactive task back into the active set can
	// push the assignee over capacity.
	if !task.Status.Active() && newStatus.Active() {
		if d := uc.guard.Evaluate(count, newStatus); !d.Allowed {
			return &LimitDecision{
				Allowed: false,
				Message: fmt.Sprintf("User already has the maximum allowed active tasks (%d).", uc.guard.Max),
			}, nil
		}
	}
	return &LimitDecision{Allowed: true}, nil
}

// GetAssignee resolves the task's assignee. A nil result with nil error means
// the task is unassigned.
func (uc *UseCase) GetAssignee(ctx context.Context, taskID string) (*domain.Assignee, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID == nil {
		return nil, nil
	}
	user, err := uc.users.GetByID(ctx, *task.AssigneeID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, err
	}
	return user.AsAssignee(), nil
}

// publish dispatches the event asynchronously; the mutation's outcome never
// depends on it. Failures are logged and dropped.
func (uc *UseCase) publish(action string, task *domain.Task) {
	if uc.publisher == nil || task == nil {
		return
	}
	event := notify.Event{
		TaskID:     task.ID,
		Title:      task.Title,
		AssigneeID: task.AssigneeID,
		Action:     action,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Warn("task event publish failed",
				zap.String("action", action),
				zap.String("task_id", event.TaskID),
				zap.Error(err))
		}
	}()
}
