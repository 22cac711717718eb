package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/topichub/backend/internal/identity"
	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/anonto42/topichub/backend/internal/router"
	"github.com/anonto42/topichub/backend/internal/validators"
	"github.com/anonto42/topichub/backend/pkg/config"
	"github.com/anonto42/topichub/backend/pkg/firebase"
	"github.com/anonto42/topichub/backend/pkg/logger"
	"github.com/anonto42/topichub/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, log)
	if err != nil {
		return fmt.Errorf("failed to initialize firebase: %w", err)
	}

	// Initialize the document store
	db, err := config.InitDB(ctx, cfg, firebaseApp, log)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}
	defer db.CloseDB()

	ident := identity.NewFirebase(firebaseApp.AuthClient, cfg.UserPageSize)
	repos := repositories.New(db.Store, ident, log, repositories.Options{FanoutLimit: cfg.FanoutLimit})
	reg := metrics.NewRegistry()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, log, reg)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Dependencies{
		Repositories: repos,
		Identity:     ident,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTTTL,
		Log:          log,
		Errors:       reg,
	})

	metricsServer := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: reg.Handler()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics server listening", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Join(e.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	return g.Wait()
}
