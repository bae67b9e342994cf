package repository

import (
	"context"

	"github.com/taskflow/backend/domain"
)

// TaskPatch carries a partial update. Nil pointers leave the stored field
// unchanged. AssigneeSet distinguishes "field absent" from an explicit null
// that clears the assignee.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domain.Status
	AssigneeID  *string
	AssigneeSet bool
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && !p.AssigneeSet
}

// TaskRepository is the single source of truth for tasks. Implementations
// must evaluate the capacity guard and perform the write as one serialized
// unit per assignee, so concurrent assignments cannot both observe room.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)

	// Create inserts the task, rejecting it with a CAPACITY error when the
	// assignee is already full and the status is active.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// Update merges the patch into the stored row. When the resulting
	// assignee would exceed capacity in an active status, the assignee is
	// cleared instead and degraded is true.
	Update(ctx context.Context, id string, patch TaskPatch) (task *domain.Task, degraded bool, err error)

	// UpdateStatus changes only the status, applying the same soft-degrade
	// rule when the task re-enters the active set.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (task *domain.Task, degraded bool, err error)

	Delete(ctx context.Context, id string) error

	// ActiveCount returns the number of active tasks held by userID,
	// excluding excludingTaskID. Used by the advisory capacity probe.
	ActiveCount(ctx context.Context, userID, excludingTaskID string) (int, error)
}
