package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bboltlib "go.etcd.io/bbolt"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/repository"
)

type commentRepository struct {
	store *Store
	now   func() time.Time
}

// NewCommentRepository returns a bbolt-backed implementation of CommentRepository.
func NewCommentRepository(store *Store) repository.CommentRepository {
	return &commentRepository{store: store, now: time.Now}
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		return tx.Bucket(bucketComments).ForEach(func(_, v []byte) error {
			var comment domain.Comment
			if err := json.Unmarshal(v, &comment); err != nil {
				return err
			}
			if comment.TaskID == taskID {
				comments = append(comments, comment)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// oldest first, matching the comment thread order
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if comment == nil || comment.TaskID == "" || comment.UserID == "" || comment.Content == "" {
		return nil, domain.ErrInvalidPayload
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	err := r.store.db.Update(func(tx *bboltlib.Tx) error {
		comment.CreatedAt = r.now().UTC()
		payload, err := json.Marshal(comment)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketComments).Put([]byte(comment.ID), payload)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bboltlib.Tx) error {
		bucket := tx.Bucket(bucketComments)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrCommentNotFound
		}
		return bucket.Delete([]byte(id))
	})
}
