package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/aman/videotube-backend/internal/auth"
	"github.com/aman/videotube-backend/internal/domain"
	"github.com/aman/videotube-backend/internal/logger"
	"github.com/aman/videotube-backend/internal/media"
	"github.com/aman/videotube-backend/internal/repository"
)

// UploadFile is an inbound media file handed to the upload service.
type UploadFile struct {
	Name        string
	Reader      io.Reader
	Size        int64
	ContentType string
}

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *UploadFile
	CoverImage *UploadFile
}

type LoginInput struct {
	Email    string
	Username string
	Password string
}

type ChangePasswordInput struct {
	OldPassword        string
	NewPassword        string
	ConfirmNewPassword string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates the session lifecycle: registration, credential
// login, refresh-token rotation, logout and password change.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   *auth.Hasher
	issuer   *auth.TokenIssuer
	files    media.FileStorage
	logger   *logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, hasher *auth.Hasher, issuer *auth.TokenIssuer, files media.FileStorage, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		files:    files,
		logger:   logger,
	}
}

func (s *AuthService) Issuer() *auth.TokenIssuer {
	return s.issuer
}

// Register creates a new user. The avatar must be present and upload
// successfully; the cover image is optional. The returned user is
// sanitized.
//
// The uniqueness pre-checks and the create are not wrapped in a
// transaction: two concurrent registrations with the same email or
// username can both pass the pre-check, and the loser fails on the
// unique index instead.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(input.Email)
	username := strings.ToLower(strings.TrimSpace(input.Username))
	password := strings.TrimSpace(input.Password)

	switch {
	case fullName == "":
		return nil, domain.NewValidation("full name is required")
	case email == "":
		return nil, domain.NewValidation("email is required")
	case username == "":
		return nil, domain.NewValidation("username is required")
	case password == "":
		return nil, domain.NewValidation("password is required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewConflict("email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewInternal("failed to check email", err)
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, domain.NewConflict("username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewInternal("failed to check username", err)
	}

	if input.Avatar == nil {
		return nil, domain.NewValidation("avatar is required")
	}

	avatarURL, err := s.files.Upload(ctx, input.Avatar.Name, input.Avatar.Reader, input.Avatar.Size, input.Avatar.ContentType)
	if err != nil {
		return nil, domain.NewUploadFailed("avatar upload failed", err)
	}

	coverImageURL := ""
	if input.CoverImage != nil {
		coverImageURL, err = s.files.Upload(ctx, input.CoverImage.Name, input.CoverImage.Reader, input.CoverImage.Size, input.CoverImage.ContentType)
		if err != nil {
			return nil, domain.NewUploadFailed("cover image upload failed", err)
		}
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, domain.NewInternal("failed to hash password", err)
	}

	user := &domain.User{
		ID:            uuid.New(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  passwordHash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
		WatchHistory:  datatypes.JSON("[]"),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, domain.NewInternal("failed to create user", err)
	}

	created, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, domain.NewInternal("user creation failed", err)
	}

	s.logger.Info("user registered", "user_id", created.ID, "username", created.Username)

	return created.Sanitized(), nil
}

// Login verifies credentials, issues an access/refresh token pair and
// persists the refresh token as the user's single active session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	username := strings.ToLower(strings.TrimSpace(input.Username))

	if email == "" && username == "" {
		return nil, domain.NewValidation("email or username is required")
	}

	var user *domain.User
	var err error
	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, username)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFound("user does not exist")
		}
		return nil, domain.NewInternal("failed to look up user", err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, domain.NewInternal("failed to verify password", err)
	}
	if !ok {
		return nil, domain.NewUnauthorized("invalid user credentials")
	}

	pair, err := s.issueAndStoreTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResult{
		User:         user.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the user's stored refresh token. The column is set to
// NULL, not empty string, so "logged out" stays distinct from "never
// issued".
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"refresh_token": nil})
	if err != nil {
		return domain.NewInternal("failed to clear refresh token", err)
	}

	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// Refresh exchanges a valid refresh token for a new access/refresh pair.
// The presented token must equal the user's currently stored refresh
// token exactly; a rotated-away or cleared token is rejected, which is
// how reuse after refresh or logout is detected. The new refresh token
// replaces the old one (rotation on every refresh). Concurrent refreshes
// are last-write-wins.
func (s *AuthService) Refresh(ctx context.Context, incomingToken string) (*TokenPair, error) {
	if incomingToken == "" {
		return nil, domain.NewUnauthorized("unauthorized request")
	}

	claims, err := s.issuer.VerifyRefresh(incomingToken)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindUnauthorized, Message: err.Error(), Err: err}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUnauthorized("invalid refresh token")
		}
		return nil, domain.NewInternal("failed to look up user", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != incomingToken {
		return nil, domain.NewUnauthorized("refresh token is expired or used")
	}

	pair, err := s.issueAndStoreTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("refresh token rotated", "user_id", user.ID)
	return pair, nil
}

// ChangePassword replaces the stored hash after verifying the old
// password. The active refresh token is cleared as well, so the existing
// session has to log in again with the new password.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmNewPassword {
		return domain.NewValidation("new password and confirmation do not match")
	}
	if strings.TrimSpace(input.NewPassword) == "" {
		return domain.NewValidation("new password is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFound("user does not exist")
		}
		return domain.NewInternal("failed to look up user", err)
	}

	ok, err := s.hasher.Verify(input.OldPassword, user.PasswordHash)
	if err != nil {
		return domain.NewInternal("failed to verify password", err)
	}
	if !ok {
		return domain.NewUnauthorized("invalid old password")
	}

	newHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return domain.NewInternal("failed to hash password", err)
	}

	err = s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"password_hash": newHash,
		"refresh_token": nil,
	})
	if err != nil {
		return domain.NewInternal("failed to update password", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// AuthenticateAccessToken resolves a bearer access token to the sanitized
// user it identifies. Verification failures and unknown users both come
// back as Unauthorized.
func (s *AuthService) AuthenticateAccessToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.NewUnauthorized("unauthorized request")
	}

	claims, err := s.issuer.VerifyAccess(token)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindUnauthorized, Message: "invalid access token", Err: err}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUnauthorized("invalid access token")
		}
		return nil, domain.NewInternal("failed to look up user", err)
	}

	return user.Sanitized(), nil
}

func (s *AuthService) issueAndStoreTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.issuer.IssueAccess(user)
	if err != nil {
		return nil, domain.NewInternal("failed to issue access token", err)
	}

	refreshToken, err := s.issuer.IssueRefresh(user)
	if err != nil {
		return nil, domain.NewInternal("failed to issue refresh token", err)
	}

	err = s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"refresh_token": refreshToken})
	if err != nil {
		return nil, domain.NewInternal("failed to store refresh token", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
