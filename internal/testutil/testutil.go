package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/aman/videotube-backend/internal/domain"
	"github.com/aman/videotube-backend/internal/media"
	"github.com/aman/videotube-backend/internal/repository"
)

// UserRepo is an in-memory UserRepository with the same observable
// behavior as the gorm implementation: unique indexes on email and
// username, not-found sentinels, field-level updates.
type UserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate key value violates unique constraint on email")
		}
		if u.Username == user.Username {
			return fmt.Errorf("duplicate key value violates unique constraint on username")
		}
	}

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	for column, value := range fields {
		switch column {
		case "refresh_token":
			if value == nil {
				u.RefreshToken = nil
			} else {
				token := value.(string)
				u.RefreshToken = &token
			}
		case "password_hash":
			u.PasswordHash = value.(string)
		case "full_name":
			u.FullName = value.(string)
		case "email":
			u.Email = value.(string)
		case "avatar_url":
			u.AvatarURL = value.(string)
		case "cover_image_url":
			u.CoverImageURL = value.(string)
		case "watch_history":
			switch raw := value.(type) {
			case []byte:
				u.WatchHistory = datatypes.JSON(raw)
			case json.RawMessage:
				u.WatchHistory = datatypes.JSON(raw)
			default:
				return fmt.Errorf("unsupported watch_history value %T", value)
			}
		default:
			return fmt.Errorf("unsupported column %q", column)
		}
	}
	return nil
}

// Delete removes a user directly, for tests exercising stale tokens.
func (r *UserRepo) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// FakeStorage is a media.FileStorage that records uploads and returns
// deterministic URLs, or fails with Err when set.
type FakeStorage struct {
	mu      sync.Mutex
	Err     error
	Uploads []string
}

var _ media.FileStorage = (*FakeStorage)(nil)

func (s *FakeStorage) Upload(_ context.Context, filename string, reader io.Reader, _ int64, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if reader != nil {
		io.Copy(io.Discard, reader)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads = append(s.Uploads, filename)
	return "https://media.test/videotube/" + strings.ReplaceAll(filename, " ", "_"), nil
}
