package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/alerts"
	httptransport "github.com/spec-kit/inventory-service/internal/api/http"
	"github.com/spec-kit/inventory-service/internal/api/http/handlers"
	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/config"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/observability"
	"github.com/spec-kit/inventory-service/internal/persistence"
	"github.com/spec-kit/inventory-service/internal/repository"
	"github.com/spec-kit/inventory-service/internal/repository/jsonstore"
	pgrepo "github.com/spec-kit/inventory-service/internal/repository/postgres"
	"github.com/spec-kit/inventory-service/internal/service"
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

	var (
		productRepo repository.ProductRepository
		userRepo    repository.UserRepository
		pg          *persistence.Postgres
	)
	if cfg.Postgres.DSN != "" {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		productRepo = pgrepo.NewProductRepository(pg.PoolHandle())
		userRepo = pgrepo.NewUserRepository(pg.PoolHandle())
	} else {
		store, err := jsonstore.New(cfg.Store.DataDir, logger)
		if err != nil {
			logger.Fatal("failed to open data store", zap.Error(err))
		}
		productRepo = store
		userRepo = store
	}

	dispatcher := events.NewInMemoryDispatcher()

	var rds *persistence.Redis
	if cfg.Redis.Addr != "" {
		rds = persistence.NewRedis(cfg.Redis, logger)
		defer rds.Close()

		publisher := events.NewRedisPublisher(rds, cfg.Redis.EventsChannel, logger)
		publisher.RegisterHandlers(dispatcher)
	}

	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg.Auth, userRepo, logger)
	inventoryService := service.NewInventoryService(productRepo, dispatcher, metrics, logger)
	alertEngine := alerts.NewEngine(productRepo, cfg.Alerts.PollInterval(), metrics, logger)
	resolver := auth.NewResolver(authService.TokenManager(), logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rds),
		Auth:     handlers.NewAuthHandler(authService),
		Products: handlers.NewProductsHandler(inventoryService),
		Alerts:   handlers.NewAlertsHandler(alertEngine, resolver, logger),
		Resolver: resolver,
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
