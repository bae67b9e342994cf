package domain

import "time"

// Status is the task lifecycle state. The wire values are part of the API
// contract shared with the board client.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Valid reports whether s is one of the three known statuses. Anything else
// is a validation failure, never coerced.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Active reports whether s counts toward an assignee's capacity.
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusInProgress
}

// Task represents a unit of work inside a project.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	AssigneeID  *string   `json:"assigneeId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Task) IsActive() bool {
	return t != nil && t.Status.Active()
}
