package notify

// Queue the lifecycle events are published to. Durable so a restarting
// consumer does not lose the backlog; delivery is still at-most-once from the
// producer's point of view (failures are dropped, never retried).
const QueueName = "task_notifications"

// Lifecycle actions carried by Event.Action.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status-changed"
	ActionDeleted       = "deleted"
)

// Event is the queue message body emitted after a committed task mutation.
type Event struct {
	TaskID     string  `json:"taskId"`
	Title      string  `json:"title,omitempty"`
	AssigneeID *string `json:"assigneeId"`
	Action     string  `json:"action"`
}
