package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/repository"
)

// UseCase is plain project CRUD; no invariant beyond a required name.
type UseCase struct {
	projects repository.ProjectRepository
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{projects: projects, logger: logger}
}

func (uc *UseCase) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return uc.projects.List(ctx)
}

func (uc *UseCase) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return uc.projects.GetByID(ctx, id)
}

func (uc *UseCase) CreateProject(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	return uc.projects.Create(ctx, project)
}

func (uc *UseCase) UpdateProject(ctx context.Context, id string, patch repository.ProjectPatch) (*domain.Project, error) {
	return uc.projects.Update(ctx, id, patch)
}

func (uc *UseCase) DeleteProject(ctx context.Context, id string) error {
	return uc.projects.Delete(ctx, id)
}
