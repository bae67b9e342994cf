package repository

import (
	"context"

	"github.com/taskflow/backend/domain"
)

// UserPatch carries a partial user update; nil fields are left unchanged.
type UserPatch struct {
	Username *string
	Email    *string
	FullName *string
	Role     *string
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.FullName == nil && p.Role == nil
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
