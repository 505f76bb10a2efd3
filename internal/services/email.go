package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/clinicdesk/crm/internal/config"
)

// ErrChannelNotConfigured is returned when a send targets a channel whose
// provider credentials are absent.
var ErrChannelNotConfigured = errors.New("channel_not_configured")

// Sender delivers one message over a channel and returns the provider's
// id for it.
type Sender interface {
	Send(ctx context.Context, to, subject, body, refID string) (providerID string, err error)
}

// EmailSender delivers email through Resend.
type EmailSender struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

// NewEmailSender builds the email channel. Returns nil when no API key is
// configured; callers treat a nil sender as channel-off.
func NewEmailSender(cfg config.EmailConfig, log *zap.Logger) *EmailSender {
	if cfg.APIKey == "" {
		return nil
	}
	return &EmailSender{
		client: resend.NewClient(cfg.APIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		log:    log,
	}
}

// Send delivers one email. The refID rides along as a header so provider
// logs can be matched back to our message rows.
func (s *EmailSender) Send(ctx context.Context, to, subject, body, refID string) (string, error) {
	if s == nil {
		return "", ErrChannelNotConfigured
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
		Headers: map[string]string{"X-Entity-Ref-ID": refID},
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.log.Warn("email send failed", zap.String("ref_id", refID), zap.Error(err))
		return "", err
	}
	s.log.Info("email sent", zap.String("ref_id", refID), zap.String("provider_id", sent.Id))
	return sent.Id, nil
}

// NewRefID mints the idempotency reference attached to outbound sends.
func NewRefID() string {
	return uuid.NewString()
}
