package router

import (
	"time"

	"github.com/anonto42/topichub/backend/internal/handlers"
	"github.com/anonto42/topichub/backend/internal/identity"
	"github.com/anonto42/topichub/backend/internal/middleware"
	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the routes are wired to
type Dependencies struct {
	Repositories *repositories.Repositories
	Identity     identity.Provider
	JWTSecret    string
	JWTTTL       time.Duration
	Log          *zap.Logger
	Errors       handlers.ErrorRecorder
}

// SetupRoutes configures all application routes and the error handler
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.HTTPErrorHandler = handlers.NewErrorHandler(deps.Log, deps.Errors)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	public := e.Group("/api/v1")
	protected := public.Group("", middleware.JWTAuthMiddleware(deps.JWTSecret))
	admin := protected.Group("", middleware.RequireAdmin())

	repos := deps.Repositories

	authHandler := handlers.NewAuthHandler(repos.Users, deps.Identity, deps.JWTSecret, deps.JWTTTL, deps.Log)
	authHandler.RegisterAuthRoutes(public, admin)

	postHandler := handlers.NewPostHandler(repos.Posts, repos.Topics, repos.Users)
	postHandler.RegisterPostRoutes(public, protected, admin)

	topicHandler := handlers.NewTopicHandler(repos.Topics, repos.Posts)
	topicHandler.RegisterTopicRoutes(public, admin)

	userHandler := handlers.NewUserHandler(repos.Users, repos.Posts)
	userHandler.RegisterUserRoutes(public, protected, admin)

	deps.Log.Info("routes configured", zap.Int("count", len(e.Routes())))
}
