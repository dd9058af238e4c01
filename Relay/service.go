// Package Relay validates contact submissions, rate-limits them per client,
// and forwards them through the mail transport.
package Relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"Folio/Models"
	"Folio/RateLimit"
	"Folio/email"
)

// Options carries the addresses and labels used to build outbound mail.
type Options struct {
	FromEmail    string
	ToEmail      string
	SubjectLabel string
}

// Service is safe for concurrent use. Only the limiter holds shared state.
type Service struct {
	sender    email.Sender
	limiter   *RateLimit.Limiter
	validator *submissionValidator
	options   Options
	logger    *zap.Logger
}

// NewService wires a relay from its collaborators
func NewService(sender email.Sender, limiter *RateLimit.Limiter, options Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sender:    sender,
		limiter:   limiter,
		validator: newSubmissionValidator(),
		options:   options,
		logger:    logger.With(zap.String("component", "relay")),
	}
}

// SubmitContact runs one submission through validation, the rate check and
// delivery, stopping at the first step that fails. A nil error means the
// transport accepted the message.
func (s *Service) SubmitContact(ctx context.Context, clientKey string, payload Models.Submission) error {
	submission := payload.Trimmed()

	failed, err := s.validator.check(submission)
	if err != nil {
		return &Error{Kind: KindValidation, Err: err}
	}
	if len(failed) > 0 {
		s.logger.Debug("submission rejected", zap.String("client", clientKey), zap.Strings("fields", failed))
		return &Error{Kind: KindValidation, Err: fmt.Errorf("%d invalid fields", len(failed))}
	}

	allowed, count, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		s.logger.Error("rate limit store failed", zap.String("client", clientKey), zap.Error(err))
		return &Error{Kind: KindStore, Err: err}
	}
	if !allowed {
		s.logger.Warn("rate limit exceeded",
			zap.String("client", clientKey),
			zap.Int("count", count),
			zap.Int("max", s.limiter.Max),
		)
		return &Error{Kind: KindRateLimit}
	}

	message := s.BuildMessage(submission)
	if err := s.sender.Send(ctx, message); err != nil {
		s.logger.Error("email delivery failed",
			zap.String("client", clientKey),
			zap.String("transport", s.sender.Name()),
			zap.Error(err),
		)
		return &Error{Kind: KindTransport, Err: err}
	}

	s.logger.Info("contact message relayed",
		zap.String("client", clientKey),
		zap.String("transport", s.sender.Name()),
	)
	return nil
}

// BuildMessage renders the outbound email for an already validated submission.
func (s *Service) BuildMessage(sub Models.Submission) Models.EmailMessage {
	subject := sub.Subject
	if s.options.SubjectLabel != "" {
		subject = fmt.Sprintf("%s — %s", s.options.SubjectLabel, sub.Subject)
	}
	return Models.EmailMessage{
		From:    s.options.FromEmail,
		To:      []string{s.options.ToEmail},
		ReplyTo: sub.Email,
		Subject: subject,
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", sub.Name, sub.Email, sub.Message),
	}
}
