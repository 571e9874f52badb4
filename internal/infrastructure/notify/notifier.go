// Package notify delivers user-facing messages. The log notifier stands
// in for real email/SMS providers.
package notify

import (
	"context"
	"log/slog"
)

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendEmail(ctx context.Context, userID, message string) error {
	n.logger.InfoContext(ctx, "email sent", "user_id", userID, "message", message)
	return nil
}

func (n *LogNotifier) SendSMS(ctx context.Context, userID, message string) error {
	n.logger.InfoContext(ctx, "sms sent", "user_id", userID, "message", message)
	return nil
}
