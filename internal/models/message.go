package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageChannel is the outbound delivery channel.
type MessageChannel string

const (
	ChannelEmail    MessageChannel = "email"
	ChannelWhatsApp MessageChannel = "whatsapp"
)

// MessageStatus tracks delivery progress of an outbound message.
type MessageStatus string

const (
	MessageQueued MessageStatus = "queued"
	MessageSent   MessageStatus = "sent"
	MessageFailed MessageStatus = "failed"
)

// Message is one outbound communication logged against a patient.
// Delivery is delegated to the channel provider; a failure marks the row
// failed but never aborts the request that queued it.
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PatientID uint     `gorm:"index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"-"`
	SenderID  uint     `gorm:"index;not null" json:"sender_id"`
	Sender    *User    `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Channel MessageChannel `gorm:"size:20;not null" json:"channel"`
	Subject string         `gorm:"size:500" json:"subject,omitempty"`
	Body    string         `gorm:"type:text;not null" json:"body"`

	Status MessageStatus `gorm:"size:20;default:'queued'" json:"status"`
	// RefID is our idempotency reference attached to the provider call.
	RefID string `gorm:"size:36" json:"ref_id,omitempty"`
	// ProviderID is the id the delivery provider returned.
	ProviderID string     `gorm:"size:100" json:"provider_id,omitempty"`
	FailReason string     `gorm:"size:500" json:"fail_reason,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}
