package notification

import (
	"context"
	"log/slog"
)

// LogSender writes the message to the structured log instead of delivering
// it. Default in development, where no relay is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "notification (log sender)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
