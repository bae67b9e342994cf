package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskflow/backend/domain"
	"github.com/taskflow/backend/repository"
)

// UseCase is plain user CRUD. Uniqueness of username and email is enforced by
// the repository.
type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{users: users, logger: logger}
}

func (uc *UseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

func (uc *UseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *UseCase) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	return uc.users.Create(ctx, user)
}

func (uc *UseCase) UpdateUser(ctx context.Context, id string, patch repository.UserPatch) (*domain.User, error) {
	return uc.users.Update(ctx, id, patch)
}

func (uc *UseCase) DeleteUser(ctx context.Context, id string) error {
	return uc.users.Delete(ctx, id)
}
