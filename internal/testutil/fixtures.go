package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/aman/videotube-backend/internal/auth"
	"github.com/aman/videotube-backend/internal/domain"
	"github.com/aman/videotube-backend/internal/logger"
	"github.com/aman/videotube-backend/internal/service"
)

// UserBuilder creates test users with a builder pattern.
type UserBuilder struct {
	username string
	email    string
	fullName string
	password string
}

// NewUserBuilder creates a UserBuilder with unique default values.
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		fullName: "Test User",
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithFullName(fullName string) *UserBuilder {
	b.fullName = fullName
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the repository and returns it along with the
// raw password.
func (b *UserBuilder) Build(t *testing.T, repo *UserRepo) (*domain.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Email:        b.email,
		FullName:     b.fullName,
		PasswordHash: string(hashed),
		AvatarURL:    "https://media.test/videotube/avatar.png",
		WatchHistory: datatypes.JSON("[]"),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// NewIssuer returns a token issuer with short but workable test TTLs.
func NewIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("access-test-secret", time.Minute, "refresh-test-secret", time.Hour)
}

// NewServices wires the full service layer onto in-memory fakes.
func NewServices(repo *UserRepo, files *FakeStorage) *service.Services {
	log := logger.New(8) // above error, keeps test output quiet
	issuer := NewIssuer()
	hasher := auth.NewHasher()

	return &service.Services{
		Auth: service.NewAuthService(repo, hasher, issuer, files, log),
		User: service.NewUserService(repo, files, log),
	}
}
