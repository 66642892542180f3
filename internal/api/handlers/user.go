package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aman/videotube-backend/internal/api/middleware"
	"github.com/aman/videotube-backend/internal/domain"
	"github.com/aman/videotube-backend/internal/logger"
	"github.com/aman/videotube-backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	logger      *logger.Logger
}

func NewUserHandler(userService *service.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, domain.NewUnauthorized("unauthorized request"))
		return
	}

	current, err := h.userService.CurrentUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, current, "current user fetched successfully")
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, domain.NewUnauthorized("unauthorized request"))
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidation("invalid request body"))
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, service.UpdateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, updated, "profile updated successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatar updated successfully", h.userService.UpdateAvatar)
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "cover image updated successfully", h.userService.UpdateCoverImage)
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field, message string,
	update func(ctx context.Context, id uuid.UUID, file *service.UploadFile) (*domain.User, error),
) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, domain.NewUnauthorized("unauthorized request"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, domain.NewValidation("invalid multipart form"))
		return
	}

	file, closeFile, err := formFile(r, field)
	if err != nil {
		writeError(w, domain.NewValidation(field+" file is required"))
		return
	}
	defer closeFile()

	updated, err := update(r.Context(), user.ID, file)
	if err != nil {
		h.logger.Error("image update failed", "field", field, "user_id", user.ID, "error", err)
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, updated, message)
}

func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, domain.NewUnauthorized("unauthorized request"))
		return
	}

	history, err := h.userService.WatchHistory(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, history, "watch history fetched successfully")
}

func (h *UserHandler) AddWatchHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, domain.NewUnauthorized("unauthorized request"))
		return
	}

	videoID := chi.URLParam(r, "videoId")

	history, err := h.userService.AddWatchHistory(r.Context(), user.ID, videoID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, history, "watch history updated")
}
