package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
)

var (
	// ErrDuplicateName is returned by Create when the name is already registered.
	ErrDuplicateName = errors.New("user name already exists")
	// ErrNotFound is returned by GetByName when no record has the name.
	ErrNotFound = errors.New("user not found")
	// ErrStoreUnavailable wraps connection and transport failures of the backend.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// UserRepository is the credential store. Name uniqueness is enforced by the
// backend itself so concurrent Create calls with one name yield exactly one success.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (int64, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
}
