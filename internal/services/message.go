package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/internal/models"
)

// ErrNoRecipientAddress is returned when the patient record lacks an
// address for the requested channel.
var ErrNoRecipientAddress = errors.New("no_recipient_address")

// MessageService queues outbound messages, hands them to the channel
// sender and records the outcome. A delivery failure marks the row failed
// but is not an error of the queuing request itself.
type MessageService struct {
	db       *gorm.DB
	email    *EmailSender
	whatsapp *WhatsAppSender
	log      *zap.Logger
}

func NewMessageService(db *gorm.DB, email *EmailSender, whatsapp *WhatsAppSender, log *zap.Logger) *MessageService {
	return &MessageService{db: db, email: email, whatsapp: whatsapp, log: log}
}

// ChannelConfigured reports whether the channel has a working provider.
func (s *MessageService) ChannelConfigured(ch models.MessageChannel) bool {
	switch ch {
	case models.ChannelEmail:
		return s.email != nil
	case models.ChannelWhatsApp:
		return s.whatsapp != nil
	}
	return false
}

// Send queues one message to a patient and attempts delivery immediately.
// The returned row carries the final status; delivery failures surface
// there, not as an error.
func (s *MessageService) Send(ctx context.Context, patientID, senderID uint, channel models.MessageChannel, subject, body string) (*models.Message, error) {
	if !s.ChannelConfigured(channel) {
		return nil, ErrChannelNotConfigured
	}

	var patient models.Patient
	if err := s.db.WithContext(ctx).First(&patient, patientID).Error; err != nil {
		return nil, err
	}

	var to string
	switch channel {
	case models.ChannelEmail:
		to = patient.Email
	case models.ChannelWhatsApp:
		to = patient.WhatsApp
	}
	if to == "" {
		return nil, ErrNoRecipientAddress
	}

	msg := models.Message{
		PatientID: patientID,
		SenderID:  senderID,
		Channel:   channel,
		Subject:   subject,
		Body:      body,
		Status:    models.MessageQueued,
		RefID:     NewRefID(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}

	var sender Sender
	switch channel {
	case models.ChannelEmail:
		sender = s.email
	case models.ChannelWhatsApp:
		sender = s.whatsapp
	}

	providerID, err := sender.Send(ctx, to, subject, body, msg.RefID)
	if err != nil {
		msg.Status = models.MessageFailed
		msg.FailReason = err.Error()
	} else {
		now := time.Now()
		msg.Status = models.MessageSent
		msg.ProviderID = providerID
		msg.SentAt = &now
	}
	if err := s.db.WithContext(ctx).Save(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// History lists a patient's messages, newest first.
func (s *MessageService) History(ctx context.Context, patientID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}
