package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aman/videotube-backend/internal/api"
	"github.com/aman/videotube-backend/internal/config"
	"github.com/aman/videotube-backend/internal/logger"
	"github.com/aman/videotube-backend/internal/media/minio"
	"github.com/aman/videotube-backend/internal/repository/postgres"
	"github.com/aman/videotube-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}

	log := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize media storage
	files, err := minio.NewClient(context.Background(), cfg.Media)
	if err != nil {
		log.Fatal("failed to initialize media storage", "error", err)
	}

	// Initialize services
	services := service.NewServices(repos, files, cfg, log)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
