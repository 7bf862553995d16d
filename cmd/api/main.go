package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/nikah-service/internal/api/http"
	"github.com/spec-kit/nikah-service/internal/api/http/handlers"
	"github.com/spec-kit/nikah-service/internal/auth"
	"github.com/spec-kit/nikah-service/internal/certificate"
	"github.com/spec-kit/nikah-service/internal/config"
	"github.com/spec-kit/nikah-service/internal/events"
	"github.com/spec-kit/nikah-service/internal/mailer"
	"github.com/spec-kit/nikah-service/internal/observability"
	"github.com/spec-kit/nikah-service/internal/persistence"
	"github.com/spec-kit/nikah-service/internal/repository"
	"github.com/spec-kit/nikah-service/internal/service"
	"github.com/spec-kit/nikah-service/internal/storage"
	"github.com/spec-kit/nikah-service/internal/worker"
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

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	witnessRepo := repository.NewWitnessRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	emailLogRepo := repository.NewEmailLogRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	store, err := storage.NewLocalStore(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init upload store", zap.Error(err))
	}
	renderer, err := certificate.NewHTMLRenderer(cfg.Certificate)
	if err != nil {
		logger.Fatal("failed to init certificate renderer", zap.Error(err))
	}

	var mail mailer.Mailer
	if cfg.Notification.SMTPAddr != "" {
		mail = mailer.NewSMTPMailer(cfg.Notification.SMTPAddr, cfg.Notification.EmailFrom)
	} else {
		mail = mailer.NewLogMailer(logger)
	}

	dispatcher := events.NewInMemoryDispatcher()

	submissionService := service.NewSubmissionService(*cfg, service.SubmissionDependencies{
		SubmissionRepo: submissionRepo,
		Dispatcher:     dispatcher,
	})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo: applicationRepo,
		WitnessRepo:     witnessRepo,
		UserRepo:        userRepo,
		Dispatcher:      dispatcher,
		Renderer:        renderer,
		Cache:           redis,
		Metrics:         metrics,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Mailer:            mail,
		Logger:            logger,
	})
	notificationService := service.NewNotificationService(cfg.Notification, service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		EmailLogRepo:     emailLogRepo,
		ApplicationRepo:  applicationRepo,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
		Mailer:           mail,
		Logger:           logger,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Applications:   handlers.NewApplicationsHandler(submissionService, applicationService),
		Auth:           handlers.NewAuthHandler(authService),
		Portal:         handlers.NewPortalHandler(applicationService, notificationRepo, store),
		Admin:          handlers.NewAdminHandler(applicationService, notificationRepo),
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
