package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/darshan-pass-service/internal/api/http"
	"github.com/spec-kit/darshan-pass-service/internal/api/http/handlers"
	"github.com/spec-kit/darshan-pass-service/internal/auth"
	"github.com/spec-kit/darshan-pass-service/internal/config"
	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/events"
	"github.com/spec-kit/darshan-pass-service/internal/observability"
	"github.com/spec-kit/darshan-pass-service/internal/persistence"
	"github.com/spec-kit/darshan-pass-service/internal/repository"
	"github.com/spec-kit/darshan-pass-service/internal/service"
	"github.com/spec-kit/darshan-pass-service/internal/validation"
	"github.com/spec-kit/darshan-pass-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := persistence.OpenKeyValue(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()
	logger.Info("store ready", zap.String("backend", store.Name()))

	requestRepo, err := repository.NewRequestRepository(ctx, store, cfg.Store.KeyPrefix)
	if err != nil {
		logger.Fatal("failed to load requests", zap.Error(err))
	}
	sessionRepo := repository.NewSessionRepository(store, cfg.Store.KeyPrefix)

	if !cfg.Auth.EchoExpectedCredentials {
		logger.Info("login errors will not echo expected credentials")
	} else if !cfg.App.IsDevelopment() {
		logger.Warn("AUTH_ECHO_EXPECTED_CREDENTIALS is on outside development; failed logins reveal credentials")
	}
	gate, err := auth.NewGate([]auth.Credential{
		{Identity: cfg.Auth.TrusteeIdentity, Secret: cfg.Auth.TrusteeCredential, Role: domain.RoleTrustee},
		{Identity: cfg.Auth.ProIdentity, Secret: cfg.Auth.ProCredential, Role: domain.RoleProTeam},
	}, cfg.Auth.BcryptCost, cfg.Auth.EchoExpectedCredentials)
	if err != nil {
		logger.Fatal("failed to build credential gate", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authService := service.NewAuthService(service.AuthDependencies{
		Gate:        gate,
		Tokens:      tokens,
		SessionRepo: sessionRepo,
		Logger:      logger,
	})
	if last, err := authService.LastSession(ctx); err != nil {
		logger.Warn("cached session unreadable", zap.Error(err))
	} else if last.Authenticated {
		logger.Info("cached session found", zap.String("role", last.RoleName()))
	}

	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		Validator: validation.NewValidator(
			validation.WithLocation(cfg.App.Location()),
			validation.WithMaxAdvanceDays(cfg.Lifecycle.MaxAdvanceDays),
		),
		IDs:                   service.NewRequestIDGenerator(time.Now),
		Dispatcher:            dispatcher,
		Logger:                logger,
		EntryGate:             cfg.Lifecycle.EntryGate,
		StrictDeleteOwnership: cfg.Lifecycle.StrictDeleteOwnership,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: !cfg.App.IsDevelopment()})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Verification:   handlers.NewVerificationHandler(requestService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
