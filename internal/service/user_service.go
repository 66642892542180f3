package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/aman/videotube-backend/internal/domain"
	"github.com/aman/videotube-backend/internal/logger"
	"github.com/aman/videotube-backend/internal/media"
	"github.com/aman/videotube-backend/internal/repository"
)

type UpdateProfileInput struct {
	FullName string
	Email    string
}

// UserService covers profile maintenance for an already-authenticated
// user: account details, avatar, cover image and watch history.
type UserService struct {
	userRepo repository.UserRepository
	files    media.FileStorage
	logger   *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, files media.FileStorage, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		files:    files,
		logger:   logger,
	}
}

func (s *UserService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdateProfile updates full name and email and returns the post-update
// sanitized record.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(input.Email)

	if fullName == "" || email == "" {
		return nil, domain.NewValidation("full name and email are required")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		if existing.ID != userID {
			return nil, domain.NewConflict("email already exists")
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewInternal("failed to check email", err)
	}

	err := s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"full_name": fullName,
		"email":     email,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFound("user does not exist")
		}
		return nil, domain.NewInternal("failed to update profile", err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file *UploadFile) (*domain.User, error) {
	return s.updateImage(ctx, userID, file, "avatar_url", "avatar")
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, file *UploadFile) (*domain.User, error) {
	return s.updateImage(ctx, userID, file, "cover_image_url", "cover image")
}

func (s *UserService) updateImage(ctx context.Context, userID uuid.UUID, file *UploadFile, column, label string) (*domain.User, error) {
	if file == nil {
		return nil, domain.NewValidation(label + " file is required")
	}

	url, err := s.files.Upload(ctx, file.Name, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, domain.NewUploadFailed(label+" upload failed", err)
	}

	err = s.userRepo.UpdateFields(ctx, userID, map[string]any{column: url})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFound("user does not exist")
		}
		return nil, domain.NewInternal("failed to update "+label, err)
	}

	s.logger.Info(label+" updated", "user_id", userID, "url", url)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// WatchHistory returns the user's watched video IDs, most recent last.
func (s *UserService) WatchHistory(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := decodeHistory(user.WatchHistory)
	if err != nil {
		return nil, domain.NewInternal("failed to decode watch history", err)
	}
	return history, nil
}

// AddWatchHistory appends a video ID to the user's watch history. Already
// present IDs are moved to the end rather than duplicated.
func (s *UserService) AddWatchHistory(ctx context.Context, userID uuid.UUID, videoID string) ([]string, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, domain.NewValidation("video id is required")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := decodeHistory(user.WatchHistory)
	if err != nil {
		return nil, domain.NewInternal("failed to decode watch history", err)
	}

	updated := make([]string, 0, len(history)+1)
	for _, id := range history {
		if id != videoID {
			updated = append(updated, id)
		}
	}
	updated = append(updated, videoID)

	raw, err := json.Marshal(updated)
	if err != nil {
		return nil, domain.NewInternal("failed to encode watch history", err)
	}

	err = s.userRepo.UpdateFields(ctx, userID, map[string]any{"watch_history": raw})
	if err != nil {
		return nil, domain.NewInternal("failed to update watch history", err)
	}

	return updated, nil
}

func (s *UserService) getUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFound("user does not exist")
		}
		return nil, domain.NewInternal("failed to look up user", err)
	}
	return user, nil
}

func decodeHistory(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var history []string
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, err
	}
	return history, nil
}
