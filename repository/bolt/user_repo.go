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

type userRepository struct {
	store *Store
	now   func() time.Time
}

// NewUserRepository returns a bbolt-backed implementation of UserRepository.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store, now: time.Now}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		var err error
		user, err = getUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.store.db.View(func(tx *bboltlib.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(_, v []byte) error {
			var user domain.User
			if err := json.Unmarshal(v, &user); err != nil {
				return err
			}
			users = append(users, user)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.Username == "" || user.Email == "" {
		return nil, domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = "member"
	}

	err := r.store.db.Update(func(tx *bboltlib.Tx) error {
		if userExists(tx, user.Username, user.Email, user.ID) {
			return domain.ErrUserConflict
		}
		now := r.now().UTC()
		user.CreatedAt = now
		user.UpdatedAt = now
		return putUser(tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch repository.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return nil, domain.ErrInvalidPayload
	}

	var updated *domain.User
	err := r.store.db.Update(func(tx *bboltlib.Tx) error {
		existing, err := getUser(tx, id)
		if err != nil {
			return err
		}

		next := *existing
		if patch.Username != nil {
			next.Username = *patch.Username
		}
		if patch.Email != nil {
			next.Email = *patch.Email
		}
		if patch.FullName != nil {
			next.FullName = *patch.FullName
		}
		if patch.Role != nil {
			next.Role = *patch.Role
		}

		if userExists(tx, next.Username, next.Email, id) {
			return domain.ErrUserConflict
		}

		next.UpdatedAt = r.now().UTC()
		if err := putUser(tx, &next); err != nil {
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

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bboltlib.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrUserNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func getUser(tx *bboltlib.Tx, id string) (*domain.User, error) {
	raw := tx.Bucket(bucketUsers).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func putUser(tx *bboltlib.Tx, user *domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketUsers).Put([]byte(user.ID), payload)
}

// userExists reports whether another user already claims the username or email.
func userExists(tx *bboltlib.Tx, username, email, excludingID string) bool {
	found := false
	_ = tx.Bucket(bucketUsers).ForEach(func(_, v []byte) error {
		var user domain.User
		if err := json.Unmarshal(v, &user); err != nil {
			return nil
		}
		if user.ID != excludingID && (user.Username == username || user.Email == email) {
			found = true
		}
		return nil
	})
	return found
}
