// dlqreplay drains one batch of dead-lettered payment events back onto
// the event bus. Run it manually, or on a schedule, after the fault that
// dead-lettered them is fixed.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/config"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/eventbus"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/worker"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
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

	if cfg.DLQURL == "" {
		logger.Error("DLQ_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	queue := eventbus.NewQueue(sqs.NewFromConfig(awsCfg), cfg.DLQURL)
	forwarder := eventbus.NewEventBridgePublisher(eventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)

	replayer := worker.NewDLQReplayer(queue, forwarder, logger)

	replayed, err := replayer.Run(ctx)
	if err != nil {
		logger.Error("dlq replay failed", "error", err)
		os.Exit(1)
	}

	logger.Info("dlq replay finished", "replayed", replayed)
}
