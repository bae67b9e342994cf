package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskflow/backend/api/handler"
)

type Handlers struct {
	Task    *apiHandler.TaskHandler
	Comment *apiHandler.CommentHandler
	Project *apiHandler.ProjectHandler
	User    *apiHandler.UserHandler
	Health  *apiHandler.HealthHandler
}

// Middleware wraps a handler chain around every route.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, middlewares ...Middleware) *router.Router {
	r := router.New()

	wrap := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}

	r.GET("/health", handlers.Health.Check)

	// Task routes
	r.GET("/tasks", wrap(handlers.Task.GetTasks))
	r.POST("/tasks", wrap(handlers.Task.CreateTask))
	r.GET("/tasks/project/{projectId}", wrap(handlers.Task.GetTasksByProject))
	r.GET("/tasks/{id}", wrap(handlers.Task.GetTask))
	r.PUT("/tasks/{id}", wrap(handlers.Task.UpdateTask))
	r.PATCH("/tasks/{id}/status", wrap(handlers.Task.UpdateStatus))
	r.DELETE("/tasks/{id}", wrap(handlers.Task.DeleteTask))
	r.GET("/tasks/{id}/check-assignee-limit", wrap(handlers.Task.CheckAssigneeLimit))
	r.GET("/tasks/{id}/assignee", wrap(handlers.Task.GetAssignee))

	// Comment routes, scoped under a task
	r.GET("/tasks/{id}/comments", wrap(handlers.Comment.GetComments))
	r.POST("/tasks/{id}/comments", wrap(handlers.Comment.AddComment))
	r.DELETE("/tasks/{id}/comments/{commentId}", wrap(handlers.Comment.DeleteComment))

	// Project routes
	r.GET("/projects", wrap(handlers.Project.GetProjects))
	r.POST("/projects", wrap(handlers.Project.CreateProject))
	r.GET("/projects/{id}", wrap(handlers.Project.GetProject))
	r.PUT("/projects/{id}", wrap(handlers.Project.UpdateProject))
	r.DELETE("/projects/{id}", wrap(handlers.Project.DeleteProject))

	// User routes
	r.GET("/users", wrap(handlers.User.GetUsers))
	r.POST("/users", wrap(handlers.User.CreateUser))
	r.GET("/users/{id}", wrap(handlers.User.GetUser))
	r.PUT("/users/{id}", wrap(handlers.User.UpdateUser))
	r.DELETE("/users/{id}", wrap(handlers.User.DeleteUser))

	return r
}
