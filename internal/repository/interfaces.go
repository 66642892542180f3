package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aman/videotube-backend/internal/domain"
)

// ErrNotFound is returned by lookups when no user matches.
var ErrNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// UpdateFields persists only the named columns, bypassing re-validation
	// of unrelated fields. A nil value clears the column.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

type Repositories struct {
	User UserRepository
}
