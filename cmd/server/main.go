package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/social-graph/backend/internal/identity"
	"github.com/anonto42/social-graph/backend/internal/router"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"github.com/anonto42/social-graph/backend/pkg/config"
	"github.com/anonto42/social-graph/backend/pkg/firebase"
	"github.com/anonto42/social-graph/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	provider, err := newIdentityProvider(ctx, cfg)
	if err != nil {
		return err
	}
	media, err := newMediaHost(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer, ok := media.(io.Closer); ok {
		defer closer.Close()
	}

	e := echo.New()
	router.SetupMiddleware(e, router.MiddlewareConfig{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, log)

	err = router.SetupRoutes(ctx, e, router.Dependencies{
		Mongo:    db.Database(),
		SQL:      db.SQL,
		Identity: provider,
		Media:    media,
		Log:      log,
	})
	if err != nil {
		return err
	}

	// Start server
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newIdentityProvider(ctx context.Context, cfg *config.Config) (identity.Provider, error) {
	if cfg.AuthProvider == "jwt" {
		return identity.NewJWTProvider(cfg.JWTSecret), nil
	}

	// Initialize Firebase
	app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("init firebase: %w", err)
	}
	return identity.NewFirebaseProvider(app.AuthClient), nil
}

func newMediaHost(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Host, error) {
	var (
		host storage.Host
		err  error
	)
	switch cfg.MediaBackend {
	case "gcs":
		host, err = storage.NewGCSHost(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	case "s3":
		host, err = storage.NewS3Host(cfg.S3Region, cfg.S3Bucket)
	case "local":
		host, err = storage.NewLocalHost(cfg.LocalStoragePath, cfg.PublicBaseURL, log.Named("storage"))
	default:
		host, err = storage.NewCloudinaryHost(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s media backend: %w", cfg.MediaBackend, err)
	}
	return host, nil
}
