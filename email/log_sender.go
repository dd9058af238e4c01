package email

import (
	"context"

	"go.uber.org/zap"

	"Folio/Models"
)

// LogSender writes messages to the log instead of delivering them. Useful
// for local development without an SMTP relay.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.With(zap.String("component", "log_sender"))}
}

func (l *LogSender) Name() string {
	return "log"
}

func (l *LogSender) Send(_ context.Context, message Models.EmailMessage) error {
	l.logger.Info("contact message",
		zap.String("from", message.From),
		zap.Strings("to", message.To),
		zap.String("reply_to", message.ReplyTo),
		zap.String("subject", message.Subject),
		zap.String("body", message.Body),
	)
	return nil
}
