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

	httptransport "github.com/spec-kit/social-services/internal/api/http"
	"github.com/spec-kit/social-services/internal/api/http/handlers"
	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/config"
	"github.com/spec-kit/social-services/internal/events"
	"github.com/spec-kit/social-services/internal/observability"
	"github.com/spec-kit/social-services/internal/persistence"
	"github.com/spec-kit/social-services/internal/repository"
	"github.com/spec-kit/social-services/internal/service"
	"github.com/spec-kit/social-services/internal/worker"
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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	profileRepo := repository.NewEmployerProfileRepository(pool)
	stepRepo := repository.NewStepRepository(pool)
	subStepRepo := repository.NewSubStepRepository(pool)
	offerRepo := repository.NewJobOfferRepository(pool)
	applicationRepo := repository.NewJobApplicationRepository(pool)
	cvRepo := repository.NewCVRepository(pool)
	inbox := repository.NewRedisNotificationStore(redis.Client, cfg.Notification.InboxLimit,
		time.Duration(cfg.Notification.InboxTTLDays)*24*time.Hour)
	transactor := repository.NewTransactor(pool, logger)

	dispatcher := events.NewAsyncDispatcher(logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	accountService := service.NewAccountService(*cfg, service.AccountDependencies{
		AccountRepo:  accountRepo,
		ProfileRepo:  profileRepo,
		Transactor:   transactor,
		Dispatcher:   dispatcher,
		TokenManager: tokens,
		Logger:       logger,
	})
	stepService := service.NewStepService(service.StepDependencies{
		StepRepo:    stepRepo,
		SubStepRepo: subStepRepo,
		Transactor:  transactor,
		Logger:      logger,
		CacheTTL:    cfg.Steps.CacheTTL(),
	})
	offerService := service.NewJobOfferService(service.JobOfferDependencies{
		OfferRepo:       offerRepo,
		ApplicationRepo: applicationRepo,
		CVRepo:          cvRepo,
		Transactor:      transactor,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	cvService := service.NewCVService(cvRepo)
	notificationService := service.NewNotificationService(dispatcher, accountRepo, inbox, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	scheduler := worker.NewScheduler(logger,
		worker.JobDigest(offerService, notificationService, cfg.Scheduler.Interval(cfg.Scheduler.DigestIntervalMins), logger),
		worker.TempCleanup(cfg.Scheduler, logger),
	)
	if cfg.Scheduler.Enabled {
		scheduler.Start(ctx)
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Steps:          handlers.NewStepsHandler(stepService),
		Jobs:           handlers.NewJobsHandler(offerService),
		CVs:            handlers.NewCVHandler(cvService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, accountRepo),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	scheduler.Stop()
	dispatcher.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
