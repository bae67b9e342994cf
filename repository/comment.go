package repository

import (
	"context"

	"github.com/taskflow/backend/domain"
)

// CommentRepository stores task comments. Listing returns comments in
// creation order (oldest first).
type CommentRepository interface {
	ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error)
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}
