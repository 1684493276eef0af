// Package entrypoint wires the application together and runs the server.
package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/config"
	"github.com/bookmarket/bookmarket/internal/database"
	"github.com/bookmarket/bookmarket/internal/database/users"
	http_controllers "github.com/bookmarket/bookmarket/internal/http"
	"github.com/bookmarket/bookmarket/internal/logging"
	"github.com/bookmarket/bookmarket/internal/mail"
	"github.com/bookmarket/bookmarket/internal/storage"
)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting server",
			zap.String("host", cfg.HTTP.Host),
			zap.Int32("port", cfg.HTTP.Port),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server exited")
}

// Run initializes every dependency and starts serving.
func Run(cfg *config.Config, version string) {
	logger, err := logging.Init(cfg.HTTP.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting bookmarket", zap.String("version", version))

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}()

	store, err := storage.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		logger.Fatal("failed to initialize upload store", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to initialize token service", zap.Error(err))
	}

	var verifier auth.TokenVerifier
	if cfg.Auth.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	usersRepo := users.NewRepository(db.DB)
	authService := auth.NewService(usersRepo, tokens, verifier, cfg.Auth)
	guards := auth.NewMiddleware(tokens, authService)

	if cfg.Seed.AdminPassword != "" {
		if err := authService.SeedAdmin(cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			logger.Fatal("failed to seed admin account", zap.Error(err))
		}
	} else {
		logger.Warn("ADMIN_PASSWORD not set, skipping admin seed")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Config:      cfg,
		Logger:      logger,
		Database:    db,
		AuthService: authService,
		Guards:      guards,
		Store:       store,
		Mailer:      mail.NewLogMailer(),
	})

	Serve(router, cfg, logger)
}
