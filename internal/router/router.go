package router

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/social-graph/backend/internal/handlers"
	"github.com/anonto42/social-graph/backend/internal/identity"
	"github.com/anonto42/social-graph/backend/internal/middleware"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"github.com/anonto42/social-graph/backend/internal/services"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"github.com/anonto42/social-graph/backend/internal/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// MiddlewareConfig tunes the global middleware chain
type MiddlewareConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// Dependencies are the external resources the routes are built on
type Dependencies struct {
	Mongo    *mongo.Database
	SQL      *gorm.DB
	Identity identity.Provider
	Media    storage.Host
	Log      *zap.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig, log *zap.Logger) {
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(log)

	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())

	if cfg.RateLimitRPS > 0 {
		e.Use(eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
			Store: eMiddleware.NewRateLimiterMemoryStoreWithConfig(eMiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitRPS),
				Burst:     cfg.RateLimitBurst,
				ExpiresIn: 3 * time.Minute,
			}),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
		}))
	}
	log.Debug("global middleware configured")
}

// SetupRoutes migrates the stores, wires repositories, services and
// handlers, and registers every route.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies) error {
	log := deps.Log

	if err := repositories.MigrateNotifications(deps.SQL); err != nil {
		return fmt.Errorf("migrate notifications: %w", err)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(deps.Mongo)
	postRepo := repositories.NewMongoPostRepository(deps.Mongo)
	commentRepo := repositories.NewMongoCommentRepository(deps.Mongo)
	notificationRepo := repositories.NewGormNotificationRepository(deps.SQL)

	for name, ensure := range map[string]func(context.Context) error{
		"users":    userRepo.EnsureIndexes,
		"posts":    postRepo.EnsureIndexes,
		"comments": commentRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	// --- Initialize Services ---
	notifier := services.NewNotifier(notificationRepo, log.Named("notifier"))
	resolver := services.NewIdentityResolver(userRepo, deps.Identity, log.Named("identity"))
	engagement := services.NewEngagementService(userRepo, postRepo, commentRepo, notifier, log.Named("engagement"))
	cascade := services.NewCascadeService(postRepo, commentRepo, deps.Media, log.Named("cascade"))
	postService := services.NewPostService(postRepo, commentRepo, userRepo, deps.Media, log.Named("posts"))
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, notifier, log.Named("comments"))
	profileService := services.NewProfileService(userRepo, deps.Media, log.Named("profiles"))
	notificationService := services.NewNotificationService(notificationRepo, userRepo, postRepo, commentRepo, log.Named("notifications"))

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	if local, ok := deps.Media.(*storage.LocalHost); ok {
		e.Static(storage.LocalRoute, local.BasePath())
	}

	api := e.Group("/api")
	protected := e.Group("/api", middleware.Auth(deps.Identity))

	handlers.NewPostHandler(postService, engagement, cascade, resolver).RegisterPostRoutes(api, protected)
	handlers.NewCommentHandler(commentService, engagement, cascade, resolver).RegisterCommentRoutes(api, protected)
	handlers.NewUserHandler(profileService, engagement, resolver).RegisterUserRoutes(api, protected)
	handlers.NewNotificationHandler(notificationService, resolver).RegisterNotificationRoutes(protected)

	log.Info("routes configured", zap.Int("count", len(e.Routes())))
	return nil
}
