package middleware

import "github.com/valyala/fasthttp"

// CORS answers preflight requests and stamps the allowed origin on every
// response. The board client runs on a different origin in development.
func CORS(origin string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if origin == "" {
		origin = "*"
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
			ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, HEAD, PUT, PATCH, POST, DELETE, OPTIONS")
			ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, X-Requested-With")

			if string(ctx.Method()) == fasthttp.MethodOptions {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
