package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/backend/api/transport"
	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/pkg/httpcontext"
	"github.com/taskflow/backend/repository"
	taskUC "github.com/taskflow/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List all tasks (cache-read)
// @Tags tasks
// @Router /tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondJSON(ctx, http.StatusOK, tasks)
}

// @Summary Get one task
// @Tags tasks
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, pathValue(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, task)
}

// @Summary List tasks for a project
// @Tags tasks
// @Router /tasks/project/{projectId} [get]
func (h *TaskHandler) GetTasksByProject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListByProject(stdCtx, pathValue(ctx, "projectId"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondJSON(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}
	if req.ProjectID == "" || req.Title == "" {
		h.respondBadRequest(ctx, "projectId and title are required")
		return
	}

	status := domain.StatusOpen
	if req.Status != "" {
		status = domain.Status(req.Status)
		if !status.Valid() {
			h.respondBadRequest(ctx, domain.ErrInvalidStatus.Message)
			return
		}
	}

	task := &domain.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		AssigneeID:  req.AssigneeID,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.TaskResponse{
		Message: "Task created successfully",
		Task:    created,
	})
}

// @Summary Update task (merge semantics, soft capacity degrade)
// @Tags tasks
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	var req transport.UpdateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}

	patch := repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID.Value,
		AssigneeSet: req.AssigneeID.Set,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !status.Valid() {
			h.respondBadRequest(ctx, domain.ErrInvalidStatus.Message)
			return
		}
		patch.Status = &status
	}
	if patch.Empty() {
		h.respondBadRequest(ctx, "No fields to update")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, degraded, err := h.uc.UpdateTask(stdCtx, pathValue(ctx, "id"), patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TaskResponse{
		Message: h.updateMessage(degraded),
		Task:    updated,
	})
}

// @Summary Patch only the task status
// @Tags tasks
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	var req transport.UpdateStatusRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "Invalid or missing status")
		return
	}
	status := domain.Status(req.Status)
	if !status.Valid() {
		h.respondBadRequest(ctx, "Invalid or missing status")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, degraded, err := h.uc.UpdateStatus(stdCtx, pathValue(ctx, "id"), status)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	message := "Status updated successfully"
	if degraded {
		message = h.updateMessage(true)
	}
	h.respondJSON(ctx, http.StatusOK, transport.TaskResponse{
		Message: message,
		Task:    updated,
	})
}

// @Summary Delete task
// @Tags tasks
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id := pathValue(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.DeleteTaskResponse{
		Message: "Task deleted successfully",
		TaskID:  id,
	})
}

// @Summary Pre-flight capacity probe for a board move
// @Tags tasks
// @Router /tasks/{id}/check-assignee-limit [get]
func (h *TaskHandler) CheckAssigneeLimit(ctx *fasthttp.RequestCtx) {
	newStatus := domain.Status(ctx.QueryArgs().Peek("newStatus"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	decision, err := h.uc.CheckAssigneeLimit(stdCtx, pathValue(ctx, "id"), newStatus)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, decision)
}

// @Summary Resolve the task's assignee
// @Tags tasks
// @Router /tasks/{id}/assignee [get]
func (h *TaskHandler) GetAssignee(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	assignee, err := h.uc.GetAssignee(stdCtx, pathValue(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.AssigneeResponse{Assignee: assignee})
}

func (h *TaskHandler) updateMessage(degraded bool) string {
	if degraded {
		return fmt.Sprintf(
			"Assignee removed: user already has the maximum allowed active tasks (%d). Please assign a different user.",
			h.uc.MaxActive())
	}
	return "Task updated successfully"
}
