package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/repository"
)

const taskColumns = `id, project_id, title, description, status, assignee_id, created_at, updated_at`

type taskRepository struct {
	pool  *pgxpool.Pool
	guard domain.Guard
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
// The capacity guard runs inside the same transaction as the write, serialized
// per assignee with an advisory lock, so two concurrent assignments to one
// user cannot both observe room.
func NewTaskRepository(pool *pgxpool.Pool, guard domain.Guard) repository.TaskRepository {
	return &taskRepository{pool: pool, guard: guard}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
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

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if task.AssigneeID != nil && task.Status.Active() {
		count, err := r.lockAndCount(ctx, tx, *task.AssigneeID, "")
		if err != nil {
			return nil, err
		}
		if d := r.guard.Evaluate(count, task.Status); !d.Allowed {
			return nil, domain.ErrAssigneeAtCapacity(r.guard.Max)
		}
	}

	const query = `
	INSERT INTO tasks (id, project_id, title, description, status, assignee_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.AssigneeID,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
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

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	existing, err := lockTask(ctx, tx, id)
	if err != nil {
		return nil, false, err
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

	// Title and description edits never consult the guard; only a patch
	// touching status or assignee can change the active set.
	degraded := false
	if (patch.Status != nil || patch.AssigneeSet) && next.AssigneeID != nil {
		count, err := r.lockAndCount(ctx, tx, *next.AssigneeID, id)
		if err != nil {
			return nil, false, err
		}
		if d := r.guard.Evaluate(count, next.Status); !d.Allowed {
			next.AssigneeID = nil
			degraded = true
		}
	}

	updated, err := writeTask(ctx, tx, &next)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ActiveCount(ctx context.Context, userID, excludingTaskID string) (int, error) {
	return countActive(ctx, r.pool, userID, excludingTaskID)
}

// lockAndCount serializes capacity decisions for one assignee within the
// current transaction and returns their authoritative active count.
func (r *taskRepository) lockAndCount(ctx context.Context, tx pgx.Tx, userID, excludingTaskID string) (int, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return 0, err
	}
	return countActive(ctx, tx, userID, excludingTaskID)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func countActive(ctx context.Context, q querier, userID, excludingTaskID string) (int, error) {
	const query = `
	SELECT count(*) FROM tasks
	WHERE assignee_id = $1
	  AND status IN ('Open', 'In Progress')
	  AND ($2 = '' OR id <> $2)
	`
	var count int
	if err := q.QueryRow(ctx, query, userID, excludingTaskID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func lockTask(ctx context.Context, tx pgx.Tx, id string) (*domain.Task, error) {
	row := tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	return scanTask(row)
}

func writeTask(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		assignee_id = $5,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.AssigneeID,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var (
		assignee  *string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Status,
		&assignee,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.AssigneeID = assignee
	task.CreatedAt = createdAt
	task.UpdatedAt = updatedAt
	return &task, nil
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
