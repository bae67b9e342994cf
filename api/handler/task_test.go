package handler

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/taskflow/backend/api/transport"
	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/repository/bolt"
	taskUC "github.com/taskflow/backend/usecase/task"
)

func newTaskHandler(t *testing.T, max int) *TaskHandler {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	guard := domain.NewGuard(max)
	uc := taskUC.New(
		bolt.NewTaskRepository(store, guard),
		bolt.NewUserRepository(store),
		cache.New(nil, nil),
		nil,
		guard,
		cache.DefaultBoardTTL,
		nil,
	)
	return NewTaskHandler(uc, nil, nil)
}

func postCtx(body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBodyString(body)
	return ctx
}

func decode[T any](t *testing.T, ctx *fasthttp.RequestCtx) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	return out
}

func createTask(t *testing.T, h *TaskHandler, body string) domain.Task {
	t.Helper()
	ctx := postCtx(body)
	h.CreateTask(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	resp := decode[transport.TaskResponse](t, ctx)
	require.NotNil(t, resp.Task)
	return *resp.Task
}

func TestCreateTaskValidation(t *testing.T) {
	h := newTaskHandler(t, 3)

	ctx := postCtx(`{"title": "no project"}`)
	h.CreateTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	resp := decode[transport.ErrorResponse](t, ctx)
	assert.Equal(t, "projectId and title are required", resp.Error)

	ctx = postCtx(`{"projectId": "p1", "title": "t", "status": "Blocked"}`)
	h.CreateTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestCreateTaskCapacityRejection(t *testing.T) {
	h := newTaskHandler(t, 1)

	createTask(t, h, `{"projectId": "p1", "title": "one", "assigneeId": "u1"}`)

	ctx := postCtx(`{"projectId": "p1", "title": "two", "assigneeId": "u1"}`)
	h.CreateTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	resp := decode[transport.ErrorResponse](t, ctx)
	assert.Contains(t, resp.Error, "maximum allowed tasks")
}

func TestUpdateTaskSoftDegradeMessage(t *testing.T) {
	h := newTaskHandler(t, 1)

	createTask(t, h, `{"projectId": "p1", "title": "holder", "assigneeId": "u1"}`)
	victim := createTask(t, h, `{"projectId": "p1", "title": "victim"}`)

	ctx := postCtx(`{"assigneeId": "u1"}`)
	ctx.SetUserValue("id", victim.ID)
	h.UpdateTask(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	resp := decode[transport.TaskResponse](t, ctx)
	assert.Contains(t, resp.Message, "Assignee removed")
	require.NotNil(t, resp.Task)
	assert.Nil(t, resp.Task.AssigneeID)
}

func TestUpdateTaskExplicitNullClearsAssignee(t *testing.T) {
	h := newTaskHandler(t, 3)

	task := createTask(t, h, `{"projectId": "p1", "title": "assigned", "assigneeId": "u1"}`)

	ctx := postCtx(`{"assigneeId": null}`)
	ctx.SetUserValue("id", task.ID)
	h.UpdateTask(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	resp := decode[transport.TaskResponse](t, ctx)
	assert.Equal(t, "Task updated successfully", resp.Message)
	require.NotNil(t, resp.Task)
	assert.Nil(t, resp.Task.AssigneeID)
}

func TestUpdateTaskNoFields(t *testing.T) {
	h := newTaskHandler(t, 3)
	task := createTask(t, h, `{"projectId": "p1", "title": "t"}`)

	ctx := postCtx(`{}`)
	ctx.SetUserValue("id", task.ID)
	h.UpdateTask(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	resp := decode[transport.ErrorResponse](t, ctx)
	assert.Equal(t, "No fields to update", resp.Error)
}

func TestUpdateStatusFlow(t *testing.T) {
	h := newTaskHandler(t, 3)
	task := createTask(t, h, `{"projectId": "p1", "title": "t"}`)

	ctx := postCtx(`{"Status": "Done"}`)
	ctx.SetUserValue("id", task.ID)
	h.UpdateStatus(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	resp := decode[transport.TaskResponse](t, ctx)
	assert.Equal(t, "Status updated successfully", resp.Message)
	assert.Equal(t, domain.StatusDone, resp.Task.Status)

	ctx = postCtx(`{"Status": "NotAStatus"}`)
	ctx.SetUserValue("id", task.ID)
	h.UpdateStatus(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	errResp := decode[transport.ErrorResponse](t, ctx)
	assert.Equal(t, "Invalid or missing status", errResp.Error)
}

func TestUpdateTaskNotFound(t *testing.T) {
	h := newTaskHandler(t, 3)

	ctx := postCtx(`{"title": "x"}`)
	ctx.SetUserValue("id", "missing")
	h.UpdateTask(ctx)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	resp := decode[transport.ErrorResponse](t, ctx)
	assert.Equal(t, "Task not found", resp.Error)
}

func TestDeleteTask(t *testing.T) {
	h := newTaskHandler(t, 3)
	task := createTask(t, h, `{"projectId": "p1", "title": "t"}`)

	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("id", task.ID)
	h.DeleteTask(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	resp := decode[transport.DeleteTaskResponse](t, ctx)
	assert.Equal(t, "Task deleted successfully", resp.Message)
	assert.Equal(t, task.ID, resp.TaskID)

	ctx = &fasthttp.RequestCtx{}
	ctx.SetUserValue("id", task.ID)
	h.DeleteTask(ctx)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestCheckAssigneeLimitEndpoint(t *testing.T) {
	h := newTaskHandler(t, 1)

	createTask(t, h, `{"projectId": "p1", "title": "active", "assigneeId": "u1"}`)
	parked := createTask(t, h, `{"projectId": "p1", "title": "parked", "assigneeId": "u1", "status": "Done"}`)

	ctx := &fasthttp.RequestCtx{}
	ctx.QueryArgs().Set("newStatus", "Open")
	ctx.SetUserValue("id", parked.ID)
	h.CheckAssigneeLimit(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	decision := decode[taskUC.LimitDecision](t, ctx)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Message, "maximum allowed active tasks")
}

func TestGetAssignee(t *testing.T) {
	h := newTaskHandler(t, 3)

	// unassigned task resolves to a null assignee, not an error
	task := createTask(t, h, `{"projectId": "p1", "title": "free"}`)
	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("id", task.ID)
	h.GetAssignee(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"assignee": null}`, string(ctx.Response.Body()))
}
