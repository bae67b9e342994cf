package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bboltlib "go.etcd.io/bbolt"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/repository"
)

type taskRepository struct {
	store *Store
	guard domain.Guard
	now   func() time.Time
}

// NewTaskRepository returns a bbolt-backed implementation of TaskRepository.
// Capacity decisions and the corresponding write share one bbolt Update
// transaction, which is single-writer by construction.
func NewTaskRepository(store *Store, guard domain.Guard) repository.TaskRepository {
	return &taskRepository{store: store, guard: guard, now: time.Now}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		var err error
		task, err = getTask(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.list(func(domain.Task) bool { return true })
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	return r.list(func(t domain.Task) bool { return t.ProjectID == projectID })
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.ProjectID == "" || task.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = domain.StatusOpen
	}
	if !task.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	err := r.store.db.Update(func(tx *bboltlib.Tx) error {
		if task.AssigneeID != nil && task.Status.Active() {
			count := countActive(tx, *task.AssigneeID, "")
			if d := r.guard.Evaluate(count, task.Status); !d.Allowed {
				return domain.ErrAssigneeAtCapacity(r.guard.Max)
			}
		}
		now := r.now().UTC()
		task.CreatedAt = now
		task.UpdatedAt = now
		return putTask(tx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, patch repository.TaskPatch) (*domain.Task, bool, error) {
	if patch.Empty() {
		return nil, false, domain.ErrInvalidPayload
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, false, domain.ErrInvalidStatus
	}

	var (
		updated  *domain.Task
		degraded bool
	)
	err := r.store.db.Update(func(tx *bboltlib.Tx) error {
		existing, err := getTask(tx, id)
		if err != nil {
			return err
		}

		next := *existing
		if patch.Title != nil {
			next.Title = *patch.Title
		}
		if patch.Description != nil {
			next.Description = *patch.Description
		}
		if patch.Status != nil {
			next.Status = *patch.Status
		}
		if patch.AssigneeSet {
			next.AssigneeID = patch.AssigneeID
		}

		// Title and description edits never consult the guard.
		if (patch.Status != nil || patch.AssigneeSet) && next.AssigneeID != nil {
			count := countActive(tx, *next.AssigneeID, id)
			if d := r.guard.Evaluate(count, next.Status); !d.Allowed {
				next.AssigneeID = nil
				degraded = true
			}
		}

		next.UpdatedAt = r.now().UTC()
		if err := putTask(tx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, degraded, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, bool, error) {
	if !status.Valid() {
		return nil, false, domain.ErrInvalidStatus
	}
	s := status
	return r.Update(ctx, id, repository.TaskPatch{Status: &s})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bboltlib.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func (r *taskRepository) ActiveCount(ctx context.Context, userID, excludingTaskID string) (int, error) {
	var count int
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		count = countActive(tx, userID, excludingTaskID)
		return nil
	})
	return count, err
}

func (r *taskRepository) list(keep func(domain.Task) bool) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		return tx.Bucket(bucketTasks).ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if keep(task) {
				tasks = append(tasks, task)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// most-recent-first, matching the Postgres backend
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func countActive(tx *bboltlib.Tx, userID, excludingTaskID string) int {
	count := 0
	_ = tx.Bucket(bucketTasks).ForEach(func(_, v []byte) error {
		var task domain.Task
		if err := json.Unmarshal(v, &task); err != nil {
			return nil
		}
		if task.ID == excludingTaskID {
			return nil
		}
		if task.AssigneeID != nil && *task.AssigneeID == userID && task.Status.Active() {
			count++
		}
		return nil
	})
	return count
}

func getTask(tx *bboltlib.Tx, id string) (*domain.Task, error) {
	raw := tx.Bucket(bucketTasks).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func putTask(tx *bboltlib.Tx, task *domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketTasks).Put([]byte(task.ID), payload)
}
