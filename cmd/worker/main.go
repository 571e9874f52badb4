package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/config"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/eventbus"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/gateway"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/notify"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/persistence/postgres"
	redisadapter "github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/redis"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/worker"
	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment worker", "log_level", cfg.Logger.Level)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redisadapter.NewClient(cfg.RedisURL, logger)
	defer redisClient.Close()

	paymentRepo := postgres.NewPaymentRepository(db)
	processedRepo := postgres.NewProcessedEventRepository(db)
	lock := redisadapter.NewLock(redisClient)

	processService := services.NewProcessPaymentService(paymentRepo, lock, newGateway(cfg, logger), logger)
	notificationService := services.NewNotificationService(processedRepo, notify.NewLogNotifier(logger), logger)

	dispatcher := worker.NewDispatcher(processService, notificationService, logger)

	// Under the managed runtime records arrive as Lambda invocations;
	// everywhere else the worker polls the queue itself.
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(sqsHandler(dispatcher, logger))
		return
	}

	if cfg.QueueURL == "" {
		logger.Error("QUEUE_URL is required outside the managed runtime")
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}
	queue := eventbus.NewQueue(sqs.NewFromConfig(awsCfg), cfg.QueueURL)

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	worker.NewPoller(queue, dispatcher, logger).Start(pollCtx)
	logger.Info("worker exited")
}

func newGateway(cfg *config.Config, logger *slog.Logger) application.PaymentGateway {
	if cfg.Gateway.BaseURL == "" {
		logger.Info("using simulated gateway", "failure_rate", cfg.Gateway.FailureRate)
		return gateway.NewSimulatedGateway(cfg.Gateway.FailureRate, logger)
	}
	return gateway.NewHTTPClient(cfg.Gateway)
}

// sqsHandler reports per-record failures so the queue only redelivers the
// records that actually failed.
func sqsHandler(d *worker.Dispatcher, logger *slog.Logger) func(context.Context, lambdaevents.SQSEvent) (lambdaevents.SQSEventResponse, error) {
	return func(ctx context.Context, event lambdaevents.SQSEvent) (lambdaevents.SQSEventResponse, error) {
		var resp lambdaevents.SQSEventResponse
		for _, record := range event.Records {
			if err := d.Dispatch(ctx, []byte(record.Body)); err != nil {
				logger.Error("record dispatch failed",
					"message_id", record.MessageId,
					"error", err)
				resp.BatchItemFailures = append(resp.BatchItemFailures, lambdaevents.SQSBatchItemFailure{
					ItemIdentifier: record.MessageId,
				})
			}
		}
		return resp, nil
	}
}
