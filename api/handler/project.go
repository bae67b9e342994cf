package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/backend/api/transport"
	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/pkg/httpcontext"
	"github.com/taskflow/backend/repository"
	projectUC "github.com/taskflow/backend/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

func (h *ProjectHandler) GetProjects(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.ListProjects(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	h.respondJSON(ctx, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.GetProject(stdCtx, pathValue(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	var req transport.CreateProjectRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}
	if req.Name == "" {
		h.respondBadRequest(ctx, "Project name is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateProject(stdCtx, &domain.Project{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.ProjectResponse{
		Message: "Project created successfully",
		Project: created,
	})
}

func (h *ProjectHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	var req transport.UpdateProjectRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}
	patch := repository.ProjectPatch{Name: req.Name, Description: req.Description}
	if patch.Empty() {
		h.respondBadRequest(ctx, "No fields to update")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateProject(stdCtx, pathValue(ctx, "id"), patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.ProjectResponse{
		Message: "Project updated successfully",
		Project: updated,
	})
}

func (h *ProjectHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	id := pathValue(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProject(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.DeleteProjectResponse{
		Message:   "Project deleted successfully",
		ProjectID: id,
	})
}
