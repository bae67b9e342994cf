package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskflow/backend/api/transport"
	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, resp := mapError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	h.respondJSON(ctx, status, resp)
}

func (h baseHandler) respondBadRequest(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{Error: message})
}

func mapError(err error) (int, transport.ErrorResponse) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, transport.ErrorResponse{Error: err.Error()}
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, transport.ErrorResponse{Error: err.Error()}
	case domain.IsDomainError(err, domain.ErrCodeCapacity):
		return http.StatusBadRequest, transport.ErrorResponse{Error: err.Error()}
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, transport.ErrorResponse{Error: err.Error()}
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, transport.ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, transport.ErrorResponse{
			Error:   "Internal Server Error",
			Details: err.Error(),
		}
	}
}

func pathValue(ctx *fasthttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}
