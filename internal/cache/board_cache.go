package cache

import (
	"context"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache keys for the derived board aggregates. The board key matches what
// existing consumers expect.
const (
	BoardKey           = "kanban:tasks_by_status"
	commentsKeyPrefix  = "comments:"
	DefaultBoardTTL    = 5 * time.Minute
	DefaultCommentsTTL = time.Minute
)

// CommentsKey returns the cache key for a task's comment thread.
func CommentsKey(taskID string) string {
	return commentsKeyPrefix + taskID
}

// BoardCache is a best-effort, TTL-bound snapshot store in front of the task
// repository. It is an optimization only: every operation absorbs failures,
// logs them, and degrades to a miss, so the system stays correct with the
// cache entirely unavailable. A nil client disables caching.
type BoardCache struct {
	client *redislib.Client
	logger *zap.Logger
}

func New(client *redislib.Client, logger *zap.Logger) *BoardCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardCache{client: client, logger: logger}
}

// Get returns the cached snapshot for key, or a miss.
func (c *BoardCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redislib.Nil {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return raw, true
}

// Put stores a snapshot with the given TTL. A bounded TTL means even a missed
// invalidation self-heals within the window.
func (c *BoardCache) Put(ctx context.Context, key string, snapshot []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if ttl <= 0 {
		ttl = DefaultBoardTTL
	}
	if err := c.client.Set(ctx, key, snapshot, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the given keys. Called after every committed mutation that
// could change the aggregate, before the mutation's response is returned.
func (c *BoardCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
