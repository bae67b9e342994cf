package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskflow/backend/domain"
)

// TaskAPI is the slice of the server the reconciler needs. The HTTP
// implementation below talks to a running server; tests substitute
// their own.
type TaskAPI interface {
	// CheckMove asks whether moving the task to newStatus would keep its
	// assignee under capacity. Advisory only.
	CheckMove(taskID string, newStatus domain.Status) (*LimitProbe, error)
	// CommitMove updates the task with its full mutated state and returns
	// the canonical task plus the server's outcome message.
	CommitMove(task domain.Task) (*CommitResult, error)
	// TasksByProject fetches the authoritative task list for a project.
	TasksByProject(projectID string) ([]domain.Task, error)
}

// LimitProbe mirrors the check-assignee-limit response.
type LimitProbe struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// CommitResult carries the canonical task after an update. Message is
// the server's human-readable outcome; a degraded commit mentions the
// cleared assignee there and in Task.AssigneeID.
type CommitResult struct {
	Message string      `json:"message"`
	Task    domain.Task `json:"task"`
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HTTPClient is a fasthttp-backed TaskAPI.
type HTTPClient struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &fasthttp.Client{},
		timeout: timeout,
	}
}

func (c *HTTPClient) CheckMove(taskID string, newStatus domain.Status) (*LimitProbe, error) {
	url := fmt.Sprintf("%s/tasks/%s/check-assignee-limit?newStatus=%s", c.baseURL, taskID, string(newStatus))
	var probe LimitProbe
	if err := c.do(fasthttp.MethodGet, url, nil, &probe); err != nil {
		return nil, err
	}
	return &probe, nil
}

func (c *HTTPClient) CommitMove(task domain.Task) (*CommitResult, error) {
	body := map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"status":      string(task.Status),
		"assigneeId":  task.AssigneeID,
	}
	url := fmt.Sprintf("%s/tasks/%s", c.baseURL, task.ID)
	var result CommitResult
	if err := c.do(fasthttp.MethodPut, url, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) TasksByProject(projectID string) ([]domain.Task, error) {
	url := fmt.Sprintf("%s/tasks/project/%s", c.baseURL, projectID)
	var tasks []domain.Task
	if err := c.do(fasthttp.MethodGet, url, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) do(method, url string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return err
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		var apiErr apiError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", status, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", status)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}
