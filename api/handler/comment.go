package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/backend/api/transport"
	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/pkg/httpcontext"
	commentUC "github.com/taskflow/backend/usecase/comment"
)

type CommentHandler struct {
	baseHandler
	uc *commentUC.UseCase
}

func NewCommentHandler(uc *commentUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List comments for a task (cache-read)
// @Tags comments
// @Router /tasks/{id}/comments [get]
func (h *CommentHandler) GetComments(ctx *fasthttp.RequestCtx) {
	taskID := pathValue(ctx, "id")
	if taskID == "" {
		h.respondBadRequest(ctx, "taskId missing in path")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comments, err := h.uc.ListByTask(stdCtx, taskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	h.respondJSON(ctx, http.StatusOK, comments)
}

// @Summary Add a comment to a task
// @Tags comments
// @Router /tasks/{id}/comments [post]
func (h *CommentHandler) AddComment(ctx *fasthttp.RequestCtx) {
	taskID := pathValue(ctx, "id")
	if taskID == "" {
		h.respondBadRequest(ctx, "taskId missing in path")
		return
	}

	var req transport.CreateCommentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}
	if req.UserID == "" || req.Content == "" {
		h.respondBadRequest(ctx, "userId and content are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.AddComment(stdCtx, &domain.Comment{
		TaskID:  taskID,
		UserID:  req.UserID,
		Content: req.Content,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, created)
}

// @Summary Delete a comment
// @Tags comments
// @Router /tasks/{id}/comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(ctx *fasthttp.RequestCtx) {
	taskID := pathValue(ctx, "id")
	id := pathValue(ctx, "commentId")
	if id == "" {
		h.respondBadRequest(ctx, "comment id missing in path")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteComment(stdCtx, taskID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Message: "Comment deleted"})
}
