package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"transcendence/config"
	"transcendence/db"
	"transcendence/handlers"
	"transcendence/middleware"
	"transcendence/presence"
	"transcendence/repositories"
	api "transcendence/routes"
	"transcendence/services"
	"transcendence/storage"
)

const (
	sweepInterval   = 5 * time.Minute
	sessionMaxIdle  = time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema ready")

	// Avatar storage is optional: without R2 credentials the app runs with
	// uploads disabled.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 credentials not set, avatar uploads disabled")
	}

	wsHub := presence.NewHub()
	go wsHub.Run()
	logger.Info("presence hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	friendRepo := repositories.NewPostgresFriendRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	twoFAService := services.NewTwoFAService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	friendService := services.NewFriendService(friendRepo, userRepo, wsHub, uploader)
	matchService := services.NewMatchService(matchRepo)
	tournamentService := services.NewTournamentService(userRepo, matchRepo)
	logger.Info("services initialized")

	// Abandoned tournament lobbies are swept periodically.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		logger.Info("tournament session sweeper started", slog.Duration("interval", sweepInterval))
		for range ticker.C {
			if removed := tournamentService.SweepIdle(sessionMaxIdle); removed > 0 {
				logger.Info("swept idle tournament sessions", slog.Int("count", removed))
			}
		}
	}()

	authMiddleware := middleware.NewAuthenticator(cfg.JWTSecretKey, userRepo)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService, twoFAService, matchService)
	friendHandler := handlers.NewFriendHandler(friendService)
	matchHandler := handlers.NewMatchHandler(matchService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, authMiddleware)
	gameHandler := handlers.NewGameHandler(authMiddleware)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authMiddleware,
		authHandler,
		userHandler,
		friendHandler,
		matchHandler,
		tournamentHandler,
		webSocketHandler,
		gameHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
