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
	userUC "github.com/taskflow/backend/usecase/user"
)

type UserHandler struct {
	baseHandler
	uc *userUC.UseCase
}

func NewUserHandler(uc *userUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

func (h *UserHandler) GetUsers(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.ListUsers(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	h.respondJSON(ctx, http.StatusOK, users)
}

func (h *UserHandler) GetUser(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetUser(stdCtx, pathValue(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(ctx *fasthttp.RequestCtx) {
	var req transport.CreateUserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}
	if req.Username == "" || req.Email == "" {
		h.respondBadRequest(ctx, "username and email are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateUser(stdCtx, &domain.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.UserResponse{
		Message: "User created successfully",
		User:    created,
	})
}

func (h *UserHandler) UpdateUser(ctx *fasthttp.RequestCtx) {
	var req transport.UpdateUserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}
	patch := repository.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if patch.Empty() {
		h.respondBadRequest(ctx, "No fields to update")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateUser(stdCtx, pathValue(ctx, "id"), patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.UserResponse{
		Message: "User updated successfully",
		User:    updated,
	})
}

func (h *UserHandler) DeleteUser(ctx *fasthttp.RequestCtx) {
	id := pathValue(ctx, "id")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteUser(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.DeleteUserResponse{
		Message: "User deleted successfully",
		UserID:  id,
	})
}
