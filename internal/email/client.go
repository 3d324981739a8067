package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/logger"
)

// Sender delivers transactional email. When disabled (no API key, local
// runs), sends are logged and dropped.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type resendSender struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
	logger      *logger.Logger
}

// NewSender creates an email sender from configuration
func NewSender(cfg *config.Configuration, log *logger.Logger) Sender {
	if !cfg.Email.Enabled || cfg.Email.APIKey == "" {
		return &resendSender{enabled: false, logger: log}
	}

	return &resendSender{
		client:      resend.NewClient(cfg.Email.APIKey),
		enabled:     true,
		fromAddress: cfg.Email.FromAddress,
		replyTo:     cfg.Email.ReplyTo,
		logger:      log,
	}
}

func (s *resendSender) Send(ctx context.Context, to, subject, html string) error {
	if !s.enabled {
		s.logger.Infow("email disabled, dropping message",
			"to", to,
			"subject", subject,
		)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.fromAddress,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		ReplyTo: s.replyTo,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return err
	}

	s.logger.Debugw("email sent", "to", to, "subject", subject, "email_id", sent.Id)
	return nil
}
