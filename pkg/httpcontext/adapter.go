// Package httpcontext bridges fasthttp request handling and the
// context.Context plumbing the rest of the service is built on.
package httpcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/taskflow/backend/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// Adapter derives a deadline-bound context from a fasthttp request and
// tags it with a request id. The id is echoed back in the response so
// callers can correlate logs.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	return &Adapter{timeout: timeout}
}

// Attach returns a context carrying the request id, bounded by the
// adapter timeout. The caller must invoke the cancel func.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	requestID := string(ctx.Request.Header.Peek(requestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx.Response.Header.Set(requestIDHeader, requestID)

	base := logger.ContextWithRequestID(context.Background(), requestID)
	if a.timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, a.timeout)
}
