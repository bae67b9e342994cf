package domain

import "time"

// User represents a person tasks can be assigned to. Username and Email are
// unique. The active task count is never stored denormalized; it is computed
// from the task store when a capacity decision is needed.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Assignee is the trimmed user shape returned by the task assignee endpoint.
type Assignee struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
}

func (u *User) AsAssignee() *Assignee {
	if u == nil {
		return nil
	}
	return &Assignee{ID: u.ID, Username: u.Username, FullName: u.FullName}
}
