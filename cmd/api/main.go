package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-portal/internal/api/http"
	"github.com/spec-kit/marketplace-portal/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-portal/internal/auth"
	"github.com/spec-kit/marketplace-portal/internal/config"
	"github.com/spec-kit/marketplace-portal/internal/events"
	"github.com/spec-kit/marketplace-portal/internal/observability"
	"github.com/spec-kit/marketplace-portal/internal/persistence"
	"github.com/spec-kit/marketplace-portal/internal/repository"
	"github.com/spec-kit/marketplace-portal/internal/service"
	"github.com/spec-kit/marketplace-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	adminRepo := repository.NewAdminRepository(pool)
	vendorRepo := repository.NewVendorRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	authEventRepo := repository.NewAuthEventRepository(pool)

	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	cookieMgr := auth.NewCookieManager(cfg.App.IsProduction())
	scopes := auth.NewRegistry(adminRepo, vendorRepo, customerRepo, cfg.Auth.SessionTTL())
	resolver := auth.NewResolver(tokenMgr, scopes, logger)
	authMiddleware := auth.NewMiddleware(cookieMgr, resolver, scopes)

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, authEventRepo, logger)
	worker.StartAuditWorker(auditService)

	limiter := persistence.NewLoginLimiter(redis, cfg.Auth.LoginAttemptLimit, cfg.Auth.LoginAttemptWindow(), logger)

	sessionService := service.NewSessionService(service.SessionDependencies{
		Scopes:     scopes,
		Tokens:     tokenMgr,
		Limiter:    limiter,
		Dispatcher: dispatcher,
	}, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	sessionsHandler := handlers.NewSessionsHandler(sessionService, cookieMgr, scopes)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Sessions:       sessionsHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
