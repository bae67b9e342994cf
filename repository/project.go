package repository

import (
	"context"

	"github.com/taskflow/backend/domain"
)

type ProjectPatch struct {
	Name        *string
	Description *string
}

func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil
}

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	Update(ctx context.Context, id string, patch ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}
