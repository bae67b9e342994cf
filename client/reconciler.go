package client

import (
	"go.uber.org/zap"

	"github.com/taskflow/backend/domain"
)

// MoveOutcome reports how a drag resolved. Board is always the state
// the caller should render next; after any completed move it is a
// function of server state alone.
type MoveOutcome struct {
	Board Board
	// Degraded is set when the server (or the pre-flight probe) cleared
	// the task's assignee to stay under capacity.
	Degraded bool
	// Warning is the user-facing explanation for a degrade.
	Warning string
	// Reloaded is set when the commit failed and the board was rebuilt
	// from a fresh server fetch.
	Reloaded bool
}

// Reconciler drives the optimistic-move protocol for one project's
// board against a TaskAPI.
type Reconciler struct {
	api       TaskAPI
	projectID string
	logger    *zap.Logger
}

func NewReconciler(api TaskAPI, projectID string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{api: api, projectID: projectID, logger: logger}
}

// Load fetches the project's tasks and regroups them into a board.
func (r *Reconciler) Load() (Board, error) {
	tasks, err := r.api.TasksByProject(r.projectID)
	if err != nil {
		return nil, err
	}
	return Regroup(tasks), nil
}

// MoveTask runs a full drag cycle: apply the move locally, probe the
// capacity guard when the move could trip it, commit the mutated task,
// and fold the canonical result back in. Any transport or commit
// failure abandons the speculative state and reloads from the server.
func (r *Reconciler) MoveTask(board Board, taskID string, to domain.Status, index int) (MoveOutcome, error) {
	next := ApplyDrag(board, taskID, to, index)
	task, _, ok := next.Find(taskID)
	if !ok {
		return MoveOutcome{Board: board}, nil
	}

	outcome := MoveOutcome{Board: next}

	// Pre-flight probe, advisory only. Probe failures are ignored; the
	// commit re-checks authoritatively.
	if to.Active() && task.AssigneeID != nil {
		probe, err := r.api.CheckMove(taskID, to)
		if err != nil {
			r.logger.Warn("capacity probe failed", zap.String("task_id", taskID), zap.Error(err))
		} else if !probe.Allowed {
			next = ClearAssignee(next, taskID)
			task, _, _ = next.Find(taskID)
			outcome.Board = next
			outcome.Degraded = true
			outcome.Warning = probe.Message
		}
	}

	result, err := r.api.CommitMove(task)
	if err != nil {
		r.logger.Warn("commit failed, reloading from server",
			zap.String("task_id", taskID), zap.Error(err))
		fresh, loadErr := r.Load()
		if loadErr != nil {
			return MoveOutcome{Board: board}, loadErr
		}
		outcome.Board = fresh
		outcome.Reloaded = true
		return outcome, nil
	}

	if task.AssigneeID != nil && result.Task.AssigneeID == nil {
		outcome.Degraded = true
		outcome.Warning = result.Message
	}
	outcome.Board = ApplyServerTask(next, result.Task)
	return outcome, nil
}
