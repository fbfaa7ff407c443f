package router

import (
	"time"

	"github.com/anonto42/inkwell/backend/internal/handlers"
	"github.com/anonto42/inkwell/backend/internal/identity"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Dependencies is everything the HTTP layer needs
type Dependencies struct {
	Services     *services.Services
	Tokens       *identity.Tokens
	CookieSecure bool
	Log          zerolog.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	if e.Validator == nil {
		e.Validator = validators.NewValidator()
	}
	svc := deps.Services

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(deps.Tokens))

	authHandler := handlers.NewAuthHandler(svc.Auth, tokenTTL(deps.Tokens), deps.CookieSecure)
	authHandler.RegisterAuthRoutes(api.Group("/auth"))

	handlers.NewUserHandler(svc.Users, svc.Auth).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(svc.Users).RegisterFollowRoutes(api)
	handlers.NewFeedHandler(svc.Feed).RegisterFeedRoutes(api)
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api)
	handlers.NewSavedPostHandler(svc.Posts).RegisterSavedPostRoutes(api)
	handlers.NewLikeHandler(svc.Likes).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(svc.Comments, svc.Likes).RegisterCommentRoutes(api)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)
	handlers.NewTagHandler(svc.Tags).RegisterTagRoutes(api)

	deps.Log.Info().Int("routes", len(e.Routes())).Msg("routes configured")
}

func tokenTTL(tokens *identity.Tokens) time.Duration {
	if tokens == nil {
		return identity.DefaultTTL
	}
	return tokens.TTL()
}
