package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clinicdesk/crm/internal/config"
)

// WhatsAppSender delivers messages through a WhatsApp gateway webhook.
type WhatsAppSender struct {
	endpoint string
	token    string
	client   *http.Client
	log      *zap.Logger
}

// NewWhatsAppSender builds the WhatsApp channel. Returns nil when no
// endpoint is configured; callers treat a nil sender as channel-off.
func NewWhatsAppSender(cfg config.WhatsAppConfig, log *zap.Logger) *WhatsAppSender {
	if cfg.Endpoint == "" {
		return nil
	}
	return &WhatsAppSender{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

type whatsAppRequest struct {
	To    string `json:"to"`
	Body  string `json:"body"`
	RefID string `json:"ref_id"`
}

type whatsAppResponse struct {
	MessageID string `json:"message_id"`
}

// Send posts one message to the gateway. The subject is ignored; WhatsApp
// has no subject line.
func (s *WhatsAppSender) Send(ctx context.Context, to, _ string, body, refID string) (string, error) {
	if s == nil {
		return "", ErrChannelNotConfigured
	}

	payload, err := json.Marshal(whatsAppRequest{To: to, Body: body, RefID: refID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("whatsapp send failed", zap.String("ref_id", refID), zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("whatsapp gateway returned %d", resp.StatusCode)
		s.log.Warn("whatsapp send rejected", zap.String("ref_id", refID), zap.Error(err))
		return "", err
	}

	var out whatsAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// Gateway accepted the message but returned an unexpected body;
		// the send still counts.
		out.MessageID = ""
	}
	s.log.Info("whatsapp sent", zap.String("ref_id", refID), zap.String("provider_id", out.MessageID))
	return out.MessageID, nil
}
