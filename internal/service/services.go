package service

import (
	"github.com/aman/videotube-backend/internal/auth"
	"github.com/aman/videotube-backend/internal/config"
	"github.com/aman/videotube-backend/internal/logger"
	"github.com/aman/videotube-backend/internal/media"
	"github.com/aman/videotube-backend/internal/repository"
)

type Services struct {
	Auth *AuthService
	User *UserService
}

func NewServices(repos *repository.Repositories, files media.FileStorage, cfg *config.Config, log *logger.Logger) *Services {
	hasher := auth.NewHasher()
	issuer := auth.NewTokenIssuer(
		cfg.Token.AccessSecret, cfg.Token.AccessExpiry,
		cfg.Token.RefreshSecret, cfg.Token.RefreshExpiry,
	)

	return &Services{
		Auth: NewAuthService(repos.User, hasher, issuer, files, log),
		User: NewUserService(repos.User, files, log),
	}
}
