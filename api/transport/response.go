package transport

import "github.com/taskflow/backend/domain"

// ErrorResponse is the stable error shape for every rejected request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TaskResponse is the success shape for task mutations. Message carries the
// soft-degrade explanation when the guard cleared the assignee.
type TaskResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

type DeleteTaskResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}

type AssigneeResponse struct {
	Assignee *domain.Assignee `json:"assignee"`
}

type ProjectResponse struct {
	Message string          `json:"message"`
	Project *domain.Project `json:"project"`
}

type DeleteProjectResponse struct {
	Message   string `json:"message"`
	ProjectID string `json:"projectId"`
}

type UserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type DeleteUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
