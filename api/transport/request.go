package transport

import "encoding/json"

// OptionalString distinguishes an absent JSON field from an explicit null.
// The task update contract needs this: `"assigneeId": null` clears the
// assignee while omitting the field leaves it unchanged.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

type CreateTaskRequest struct {
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssigneeID  *string `json:"assigneeId"`
}

type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	AssigneeID  OptionalString `json:"assigneeId"`
}

// UpdateStatusRequest is the PATCH body. The capitalized field name is part
// of the existing contract.
type UpdateStatusRequest struct {
	Status string `json:"Status"`
}

type CreateCommentRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
