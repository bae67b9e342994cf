package comment

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/repository"
)

// UseCase manages task comment threads and their per-task cache entries.
type UseCase struct {
	comments repository.CommentRepository
	cache    *cache.BoardCache
	ttl      time.Duration
	logger   *zap.Logger
}

func New(comments repository.CommentRepository, boardCache *cache.BoardCache, ttl time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = cache.DefaultCommentsTTL
	}
	return &UseCase{
		comments: comments,
		cache:    boardCache,
		ttl:      ttl,
		logger:   logger,
	}
}

// ListByTask serves the thread through the cache, oldest comment first.
func (uc *UseCase) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	key := cache.CommentsKey(taskID)
	if raw, ok := uc.cache.Get(ctx, key); ok {
		var comments []domain.Comment
		if err := json.Unmarshal(raw, &comments); err == nil {
			return comments, nil
		}
		uc.logger.Warn("discarding malformed comments cache snapshot", zap.String("task_id", taskID))
	}

	comments, err := uc.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if snapshot, err := json.Marshal(comments); err == nil {
		uc.cache.Put(ctx, key, snapshot, uc.ttl)
	}
	return comments, nil
}

func (uc *UseCase) AddComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	created, err := uc.comments.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, cache.CommentsKey(created.TaskID))
	return created, nil
}

func (uc *UseCase) DeleteComment(ctx context.Context, taskID, id string) error {
	if err := uc.comments.Delete(ctx, id); err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, cache.CommentsKey(taskID))
	return nil
}
