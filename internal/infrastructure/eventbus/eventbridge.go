// Package eventbus adapts the pipeline to its delivery substrate: an
// EventBridge-style bus on the publish side and SQS on the consume side.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// Source identifies this pipeline on every bus entry it emits.
const Source = "ficmart.payments"

type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher publishes envelopes as bus entries with the event
// type as detail-type and the full envelope as detail.
type EventBridgePublisher struct {
	client  EventBridgeAPI
	busName string
	logger  *slog.Logger
}

func NewEventBridgePublisher(client EventBridgeAPI, busName string, logger *slog.Logger) *EventBridgePublisher {
	return &EventBridgePublisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

func (p *EventBridgePublisher) Publish(ctx context.Context, env *events.Envelope) error {
	detail, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", env.EventID, err)
	}
	return p.Forward(ctx, Source, env.EventType, detail)
}

func (p *EventBridgePublisher) Forward(ctx context.Context, source, detailType string, detail []byte) error {
	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				Source:       aws.String(source),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(string(detail)),
				EventBusName: aws.String(p.busName),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put events: %w", err)
	}
	if out.FailedEntryCount > 0 {
		return fmt.Errorf("put events: %d entries rejected by the bus", out.FailedEntryCount)
	}
	return nil
}
