// Package client implements the board-side view of the task service:
// a pure reducer over the status-grouped board plus a reconciler that
// drives drag moves through the probe/commit protocol and pulls the
// board back to server truth on any failure.
package client

import (
	"github.com/taskflow/backend/domain"
)

// Board holds a project's tasks grouped by status column. It is a
// plain value; every transition below returns a new Board and leaves
// its input untouched, so speculative states can be discarded freely.
type Board map[domain.Status][]domain.Task

// Columns is the fixed rendering order of the board.
var Columns = []domain.Status{domain.StatusOpen, domain.StatusInProgress, domain.StatusDone}

// Regroup builds a board from a flat task list, preserving the list
// order within each column.
func Regroup(tasks []domain.Task) Board {
	b := Board{}
	for _, s := range Columns {
		b[s] = nil
	}
	for _, t := range tasks {
		b[t.Status] = append(b[t.Status], t)
	}
	return b
}

// clone copies the board one level deep. Task values are copied by
// value, which is enough since transitions replace whole tasks.
func (b Board) clone() Board {
	out := make(Board, len(b))
	for s, col := range b {
		out[s] = append([]domain.Task(nil), col...)
	}
	return out
}

// Find returns the task with the given id and the column holding it.
func (b Board) Find(taskID string) (domain.Task, domain.Status, bool) {
	for s, col := range b {
		for _, t := range col {
			if t.ID == taskID {
				return t, s, true
			}
		}
	}
	return domain.Task{}, "", false
}

// Tasks flattens the board back to a single list in column order.
func (b Board) Tasks() []domain.Task {
	var out []domain.Task
	for _, s := range Columns {
		out = append(out, b[s]...)
	}
	return out
}

// ApplyDrag moves taskID into the destination column at index,
// updating the task's local status. This is the optimistic step of a
// drag: it runs before any network call. Unknown task ids and unknown
// destinations leave the board unchanged.
func ApplyDrag(b Board, taskID string, to domain.Status, index int) Board {
	if !to.Valid() {
		return b
	}
	task, from, ok := b.Find(taskID)
	if !ok {
		return b
	}

	next := b.clone()

	col := next[from]
	for i, t := range col {
		if t.ID == taskID {
			next[from] = append(col[:i:i], col[i+1:]...)
			break
		}
	}

	task.Status = to
	dest := next[to]
	if index < 0 || index > len(dest) {
		index = len(dest)
	}
	dest = append(dest, domain.Task{})
	copy(dest[index+1:], dest[index:])
	dest[index] = task
	next[to] = dest

	return next
}

// ApplyServerTask replaces the local copy of a task with the canonical
// one returned by the server. If the canonical status differs from the
// column currently holding the task, the task moves to the end of the
// canonical column. Tasks the board has never seen are appended.
func ApplyServerTask(b Board, task domain.Task) Board {
	next := b.clone()

	_, from, ok := next.Find(task.ID)
	if ok && from == task.Status {
		col := next[from]
		for i, t := range col {
			if t.ID == task.ID {
				col[i] = task
				break
			}
		}
		return next
	}

	if ok {
		col := next[from]
		for i, t := range col {
			if t.ID == task.ID {
				next[from] = append(col[:i:i], col[i+1:]...)
				break
			}
		}
	}
	next[task.Status] = append(next[task.Status], task)
	return next
}

// ClearAssignee returns the board with the task's local assignee
// removed. Used when a pre-flight probe reports the assignee is at
// capacity, ahead of the commit that would clear it server-side.
func ClearAssignee(b Board, taskID string) Board {
	next := b.clone()
	for s, col := range next {
		for i, t := range col {
			if t.ID == taskID {
				t.AssigneeID = nil
				next[s][i] = t
				return next
			}
		}
	}
	return next
}
