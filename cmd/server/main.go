package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/inkwell/backend/internal/identity"
	"github.com/anonto42/inkwell/backend/internal/media"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/router"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/internal/throttle"
	"github.com/anonto42/inkwell/backend/pkg/config"
	"github.com/anonto42/inkwell/backend/pkg/firebase"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/anonto42/inkwell/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("development", "info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Server.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.Close()

	if err := repositories.Migrate(db.SQL); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate relational models")
	}
	postRepo := repositories.NewMongoPostRepository(db.Documents)
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create post indexes")
	}
	repos := repositories.NewRepositories(db.SQL, postRepo)

	opts := services.Options{
		Tokens: identity.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Views:  throttle.New(cfg.Views.Cooldown, throttle.WithMaxEntries(cfg.Views.MaxEntries)),
	}
	initFirebase(ctx, cfg, &opts, log)
	go opts.Views.Run(ctx, cfg.Views.SweepInterval)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, router.Dependencies{
		Services:     services.NewServices(repos, opts, log),
		Tokens:       opts.Tokens,
		CookieSecure: cfg.Server.CookieSecure,
		Log:          log,
	})

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// initFirebase wires Firebase login and the image store when credentials are configured
func initFirebase(ctx context.Context, cfg *config.Config, opts *services.Options, log zerolog.Logger) {
	if cfg.Firebase.CredentialsPath == "" {
		log.Warn().Msg("firebase not configured: firebase login and image uploads disabled")
		return
	}
	app, err := firebase.InitFirebase(ctx, cfg.Firebase.CredentialsPath, cfg.Firebase.StorageBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase")
	}
	opts.Firebase = app.AuthClient
	if app.Bucket != nil {
		opts.Media = media.NewFirebaseStore(app.Bucket, app.BucketName)
	} else {
		log.Warn().Msg("no storage bucket configured: image uploads disabled")
	}
}
