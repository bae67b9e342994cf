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

type projectRepository struct {
	store *Store
	now   func() time.Time
}

// NewProjectRepository returns a bbolt-backed implementation of ProjectRepository.
func NewProjectRepository(store *Store) repository.ProjectRepository {
	return &projectRepository{store: store, now: time.Now}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var project *domain.Project
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		raw := tx.Bucket(bucketProjects).Get([]byte(id))
		if raw == nil {
			return domain.ErrProjectNotFound
		}
		project = &domain.Project{}
		return json.Unmarshal(raw, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		return tx.Bucket(bucketProjects).ForEach(func(_, v []byte) error {
			var project domain.Project
			if err := json.Unmarshal(v, &project); err != nil {
				return err
			}
			projects = append(projects, project)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil || project.Name == "" {
		return nil, domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	err := r.store.db.Update(func(tx *bboltlib.Tx) error {
		now := r.now().UTC()
		project.CreatedAt = now
		project.UpdatedAt = now
		return putProject(tx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) Update(ctx context.Context, id string, patch repository.ProjectPatch) (*domain.Project, error) {
	if patch.Empty() {
		return nil, domain.ErrInvalidPayload
	}

	var updated *domain.Project
	err := r.store.db.Update(func(tx *bboltlib.Tx) error {
		raw := tx.Bucket(bucketProjects).Get([]byte(id))
		if raw == nil {
			return domain.ErrProjectNotFound
		}
		var next domain.Project
		if err := json.Unmarshal(raw, &next); err != nil {
			return err
		}
		if patch.Name != nil {
			next.Name = *patch.Name
		}
		if patch.Description != nil {
			next.Description = *patch.Description
		}
		next.UpdatedAt = r.now().UTC()
		if err := putProject(tx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bboltlib.Tx) error {
		bucket := tx.Bucket(bucketProjects)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrProjectNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func putProject(tx *bboltlib.Tx, project *domain.Project) error {
	payload, err := json.Marshal(project)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketProjects).Put([]byte(project.ID), payload)
}
