package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/repository"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a Postgres-backed implementation of CommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) repository.CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	const query = `
	SELECT id, task_id, user_id, content, created_at
	FROM comments
	WHERE task_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if comment == nil || comment.TaskID == "" || comment.UserID == "" || comment.Content == "" {
		return nil, domain.ErrInvalidPayload
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO comments (id, task_id, user_id, content)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		comment.ID, comment.TaskID, comment.UserID, comment.Content,
	).Scan(&comment.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
