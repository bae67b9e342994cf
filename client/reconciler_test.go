package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/backend/domain"
)

// stubAPI plays the server side of the protocol. server holds the
// authoritative task list returned by TasksByProject; commit applies
// the move to it unless commitErr is set.
type stubAPI struct {
	server []domain.Task

	probe     *LimitProbe
	probeErr  error
	commitErr error

	probeCalls  int
	commitCalls int
}

func (s *stubAPI) CheckMove(taskID string, newStatus domain.Status) (*LimitProbe, error) {
	s.probeCalls++
	if s.probeErr != nil {
		return nil, s.probeErr
	}
	if s.probe != nil {
		return s.probe, nil
	}
	return &LimitProbe{Allowed: true}, nil
}

func (s *stubAPI) CommitMove(task domain.Task) (*CommitResult, error) {
	s.commitCalls++
	if s.commitErr != nil {
		return nil, s.commitErr
	}
	for i, existing := range s.server {
		if existing.ID == task.ID {
			s.server[i] = task
			return &CommitResult{Message: "Task updated successfully", Task: task}, nil
		}
	}
	return nil, errors.New("unknown task")
}

func (s *stubAPI) TasksByProject(projectID string) ([]domain.Task, error) {
	out := make([]domain.Task, len(s.server))
	copy(out, s.server)
	return out, nil
}

func TestMoveTaskHappyPath(t *testing.T) {
	api := &stubAPI{server: []domain.Task{
		task("a", domain.StatusOpen, "u1"),
		task("b", domain.StatusInProgress, ""),
	}}
	r := NewReconciler(api, "p1", nil)

	board, err := r.Load()
	require.NoError(t, err)

	outcome, err := r.MoveTask(board, "a", domain.StatusInProgress, 0)
	require.NoError(t, err)
	assert.False(t, outcome.Degraded)
	assert.False(t, outcome.Reloaded)
	assert.Equal(t, 1, api.probeCalls)
	assert.Equal(t, 1, api.commitCalls)

	moved, col, ok := outcome.Board.Find("a")
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, col)
	require.NotNil(t, moved.AssigneeID)
	assert.Equal(t, "u1", *moved.AssigneeID)
}

func TestMoveTaskSkipsProbeWhenNotNeeded(t *testing.T) {
	api := &stubAPI{server: []domain.Task{
		task("a", domain.StatusOpen, "u1"),
		task("b", domain.StatusOpen, ""),
	}}
	r := NewReconciler(api, "p1", nil)
	board, err := r.Load()
	require.NoError(t, err)

	// moving out of the active set needs no probe
	_, err = r.MoveTask(board, "a", domain.StatusDone, 0)
	require.NoError(t, err)
	assert.Zero(t, api.probeCalls)

	// neither does moving an unassigned task
	_, err = r.MoveTask(board, "b", domain.StatusInProgress, 0)
	require.NoError(t, err)
	assert.Zero(t, api.probeCalls)
}

func TestMoveTaskProbeDenialClearsAssigneeBeforeCommit(t *testing.T) {
	api := &stubAPI{
		server: []domain.Task{task("a", domain.StatusDone, "u1")},
		probe:  &LimitProbe{Allowed: false, Message: "User already has the maximum allowed active tasks (1)."},
	}
	r := NewReconciler(api, "p1", nil)
	board, err := r.Load()
	require.NoError(t, err)

	outcome, err := r.MoveTask(board, "a", domain.StatusOpen, 0)
	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
	assert.Contains(t, outcome.Warning, "maximum allowed")

	moved, _, ok := outcome.Board.Find("a")
	require.True(t, ok)
	assert.Nil(t, moved.AssigneeID)

	// the committed task carried the cleared assignee
	require.Len(t, api.server, 1)
	assert.Nil(t, api.server[0].AssigneeID)
}

func TestMoveTaskProbeFailureStillCommits(t *testing.T) {
	api := &stubAPI{
		server:   []domain.Task{task("a", domain.StatusDone, "u1")},
		probeErr: errors.New("probe timeout"),
	}
	r := NewReconciler(api, "p1", nil)
	board, err := r.Load()
	require.NoError(t, err)

	outcome, err := r.MoveTask(board, "a", domain.StatusOpen, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, api.commitCalls)
	assert.False(t, outcome.Reloaded)
}

func TestMoveTaskServerDegradeSurfacesWarning(t *testing.T) {
	api := &stubAPI{server: []domain.Task{task("a", domain.StatusDone, "u1")}}
	r := NewReconciler(api, "p1", nil)
	board, err := r.Load()
	require.NoError(t, err)

	// probe says yes but the authoritative commit clears the assignee
	orig := api.server
	api.probe = &LimitProbe{Allowed: true}
	apiWrap := &degradingAPI{stubAPI: api, server: orig}
	r = NewReconciler(apiWrap, "p1", nil)

	outcome, err := r.MoveTask(board, "a", domain.StatusOpen, 0)
	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
	assert.NotEmpty(t, outcome.Warning)

	moved, _, ok := outcome.Board.Find("a")
	require.True(t, ok)
	assert.Nil(t, moved.AssigneeID)
}

// degradingAPI commits the move but clears the assignee, like the
// server-side soft degrade.
type degradingAPI struct {
	*stubAPI
	server []domain.Task
}

func (d *degradingAPI) CommitMove(task domain.Task) (*CommitResult, error) {
	task.AssigneeID = nil
	return &CommitResult{
		Message: "Assignee removed: user already has the maximum allowed active tasks (1). Please assign a different user.",
		Task:    task,
	}, nil
}

func TestMoveTaskCommitFailureReloadsFromServer(t *testing.T) {
	server := []domain.Task{
		task("a", domain.StatusOpen, "u1"),
		task("b", domain.StatusInProgress, ""),
	}
	api := &stubAPI{server: server, commitErr: errors.New("connection reset")}
	r := NewReconciler(api, "p1", nil)

	board, err := r.Load()
	require.NoError(t, err)

	outcome, err := r.MoveTask(board, "a", domain.StatusInProgress, 0)
	require.NoError(t, err)
	assert.True(t, outcome.Reloaded)

	// the board converges to server truth with no residual optimism
	fresh, err := api.TasksByProject("p1")
	require.NoError(t, err)
	assert.Equal(t, Regroup(fresh), outcome.Board)

	_, col, ok := outcome.Board.Find("a")
	require.True(t, ok)
	assert.Equal(t, domain.StatusOpen, col)
}

func TestMoveTaskUnknownTaskIsNoop(t *testing.T) {
	api := &stubAPI{server: []domain.Task{task("a", domain.StatusOpen, "")}}
	r := NewReconciler(api, "p1", nil)
	board, err := r.Load()
	require.NoError(t, err)

	outcome, err := r.MoveTask(board, "ghost", domain.StatusDone, 0)
	require.NoError(t, err)
	assert.Equal(t, board, outcome.Board)
	assert.Zero(t, api.commitCalls)
}
