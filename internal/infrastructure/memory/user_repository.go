// Package memory provides an in-process credential store for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/internal/domain/repository"
)

// UserRepository keeps users in a map keyed by name. Ids are assigned sequentially from 1.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byName: make(map[string]entity.User)}
}

func (r *UserRepository) Create(_ context.Context, name, email, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return 0, repository.ErrDuplicateName
	}
	r.nextID++
	r.byName[name] = entity.User{
		ID:           r.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	return r.nextID, nil
}

func (r *UserRepository) GetByName(_ context.Context, name string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
