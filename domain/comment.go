package domain

import "time"

// Comment is an append-only note attached to a task. The "_id" wire name is
// kept for compatibility with existing board clients.
type Comment struct {
	ID        string    `json:"_id"`
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
