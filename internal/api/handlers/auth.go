package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/aman/videotube-backend/internal/api/middleware"
	"github.com/aman/videotube-backend/internal/domain"
	"github.com/aman/videotube-backend/internal/logger"
	"github.com/aman/videotube-backend/internal/service"
)

const maxUploadMemory = 32 << 20 // 32 MiB

type AuthHandler struct {
	authService *service.AuthService
	logger      *logger.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Register handles multipart registration: text fields plus an avatar
// file (required) and a cover image file (optional).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, domain.NewValidation("invalid multipart form"))
		return
	}

	input := service.RegisterInput{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	avatar, avatarClose, err := formFile(r, "avatar")
	if err != nil {
		writeError(w, domain.NewValidation("avatar is required"))
		return
	}
	if avatarClose != nil {
		defer avatarClose()
	}
	input.Avatar = avatar

	cover, coverClose, err := formFile(r, "coverImage")
	if err == nil && coverClose != nil {
		defer coverClose()
		input.CoverImage = cover
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		h.logger.Error("registration failed", "error", err)
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, user, "user created successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidation("invalid request body"))
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	issuer := h.authService.Issuer()
	setAuthCookies(w, result.AccessToken, result.RefreshToken, issuer.AccessExpiry(), issuer.RefreshExpiry())
	writeData(w, http.StatusOK, LoginResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "user logged in successfully")
}

// Refresh rotates the refresh token. The incoming token is read from the
// refreshToken cookie or, failing that, from the request body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	issuer := h.authService.Issuer()
	setAuthCookies(w, pair.AccessToken, pair.RefreshToken, issuer.AccessExpiry(), issuer.RefreshExpiry())
	writeData(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "access token refreshed")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, domain.NewUnauthorized("unauthorized request"))
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		h.logger.Error("logout failed", "user_id", user.ID, "error", err)
		writeError(w, err)
		return
	}

	clearAuthCookies(w)
	writeData(w, http.StatusOK, nil, "user logged out")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, domain.NewUnauthorized("unauthorized request"))
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidation("invalid request body"))
		return
	}

	err := h.authService.ChangePassword(r.Context(), user.ID, service.ChangePasswordInput{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, nil, "password changed successfully")
}

// formFile adapts a multipart file to a service upload. The returned
// close func must be deferred by the caller when non-nil.
func formFile(r *http.Request, field string) (*service.UploadFile, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	return &service.UploadFile{
		Name:        header.Filename,
		Reader:      file,
		Size:        header.Size,
		ContentType: contentTypeOf(header),
	}, func() { file.Close() }, nil
}

func contentTypeOf(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
