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

const projectColumns = `id, name, description, created_at, updated_at`

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed implementation of ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil || project.Name == "" {
		return nil, domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (id, name, description)
	VALUES ($1, $2, $3)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.ID, project.Name, project.Description,
	).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) Update(ctx context.Context, id string, patch repository.ProjectPatch) (*domain.Project, error) {
	if patch.Empty() {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	UPDATE projects
	SET name = COALESCE($2, name),
		description = COALESCE($3, description),
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + projectColumns

	row := r.pool.QueryRow(ctx, query, id, patch.Name, patch.Description)
	project, err := scanProject(row)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}
