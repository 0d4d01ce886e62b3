package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/vacation-manager/internal/api/http"
	"github.com/spec-kit/vacation-manager/internal/api/http/handlers"
	"github.com/spec-kit/vacation-manager/internal/auth"
	"github.com/spec-kit/vacation-manager/internal/config"
	"github.com/spec-kit/vacation-manager/internal/directory"
	"github.com/spec-kit/vacation-manager/internal/events"
	"github.com/spec-kit/vacation-manager/internal/observability"
	"github.com/spec-kit/vacation-manager/internal/persistence"
	"github.com/spec-kit/vacation-manager/internal/repository"
	"github.com/spec-kit/vacation-manager/internal/service"
	"github.com/spec-kit/vacation-manager/internal/storage"
	"github.com/spec-kit/vacation-manager/internal/worker"
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

	blobs, err := storage.NewLocalStore(cfg.Storage.SickNoteDir)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)

	dir := directory.NewService(userRepo, teamRepo, redis.Client, cfg.Directory.CacheTTL(), logger)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		Blobs:       blobs,
		Dispatcher:  dispatcher,
	})
	orgService := service.NewOrgService(service.OrgDependencies{
		TeamRepo:    teamRepo,
		ProjectRepo: projectRepo,
		UserRepo:    userRepo,
		Directory:   dir,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), dir)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Approvals:      handlers.NewApprovalsHandler(requestService),
		Org:            handlers.NewOrgHandler(orgService),
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
