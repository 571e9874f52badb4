package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/config"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/eventbus"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/persistence/postgres"
	redisadapter "github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/redis"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/worker"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const analyticsInterval = time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment api",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
		"aws_events", cfg.UseAWSEvents,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient := redisadapter.NewClient(cfg.RedisURL, logger)
	defer redisClient.Close()

	paymentRepo := postgres.NewPaymentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db, logger)
	analyticsRepo := postgres.NewAnalyticsRepository(db)

	idempotencyCache := redisadapter.NewIdempotencyCache(redisClient)
	rateLimiter := redisadapter.NewRateLimiter(redisClient)
	paymentCache := redisadapter.NewPaymentCache(redisClient)

	bus, err := newEventBus(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build event bus", "error", err)
		os.Exit(1)
	}

	createService := services.NewCreatePaymentService(paymentRepo, idempotencyCache, rateLimiter, logger)
	queryService := services.NewQueryService(paymentRepo, paymentCache, logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo, logger)

	readiness := map[string]handlers.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return db.Pool.Ping(ctx) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx) },
	}

	h := handlers.NewHandlers(createService, queryService, readiness, logger)
	router := handlers.NewRouter(h, cfg.Server.ReadTimeout, logger)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	publisher := worker.NewOutboxPublisher(
		outboxRepo,
		bus,
		cfg.Publisher.Interval,
		cfg.Publisher.BatchSize,
		logger,
	)

	analyticsWorker := worker.NewAnalyticsWorker(analyticsService, analyticsInterval, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go publisher.Start(workerCtx)
	go analyticsWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func newEventBus(ctx context.Context, cfg *config.Config, logger *slog.Logger) (application.EventBus, error) {
	if !cfg.UseAWSEvents {
		logger.Info("using log event bus")
		return eventbus.NewLogPublisher(logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := eventbridge.NewFromConfig(awsCfg)
	return eventbus.NewEventBridgePublisher(client, cfg.EventBusName, logger), nil
}

func runMigrations(dsn, migrationsPath string, logger *slog.Logger) error {
	logger.Info("running database migrations", "path", migrationsPath)

	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
