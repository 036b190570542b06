package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/auth"
	"github.com/iheartbourbon/bourbon/internal/config"
	"github.com/iheartbourbon/bourbon/internal/handlers"
	"github.com/iheartbourbon/bourbon/internal/logging"
	"github.com/iheartbourbon/bourbon/internal/oauth"
	"github.com/iheartbourbon/bourbon/internal/router"
	"github.com/iheartbourbon/bourbon/internal/storage"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is a development convenience; deployments set real variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)

	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := auth.InitJWTSecret(cfg.JWTSecret); err != nil {
		return err
	}

	if err := db.ConnectDatabase(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		return err
	}

	if err := db.MigrateDatabase(); err != nil {
		return err
	}

	providers, err := oauth.NewRegistry(cfg)

	if err != nil {
		return err
	}

	opts := handlers.Options{
		CookieDomain: cfg.CookieDomain,
		CookieSecure: cfg.CookieSecure,
		ClientURL:    cfg.ClientURL,
		Providers:    providers,
		StateStore:   handlers.NewStateStore([]byte(cfg.SessionKey), cfg.CookieSecure),
	}

	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(context.Background(), cfg.S3Bucket, cfg.S3PublicURL)

		if err != nil {
			return err
		}

		opts.Images = store
	} else {
		logger.Warn("S3_BUCKET not set, image uploads are disabled")
	}

	handlers.Configure(opts)
	types.AllowedOrigins = cfg.AllowedOrigins

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.Int("oauth_providers", len(providers)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
