package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/internal/config"
	"github.com/clinicdesk/crm/internal/models"
)

func setupMessageDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Patient{}, &models.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.Create(&models.User{Email: "staff@example.com", Password: "x"})
	db.Create(&models.Patient{FirstName: "Ana", LastName: "Diaz", WhatsApp: "+33600000001"})
	return db
}

func TestSendWhatsAppRecordsDelivery(t *testing.T) {
	db := setupMessageDB(t)

	var gotAuth string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var in struct {
			To    string `json:"to"`
			Body  string `json:"body"`
			RefID string `json:"ref_id"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		if in.To != "+33600000001" || in.RefID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message_id": "wamid.42"})
	}))
	defer gateway.Close()

	wa := NewWhatsAppSender(config.WhatsAppConfig{Endpoint: gateway.URL, Token: "tok"}, zap.NewNop())
	svc := NewMessageService(db, nil, wa, zap.NewNop())

	msg, err := svc.Send(context.Background(), 1, 1, models.ChannelWhatsApp, "", "Your appointment is tomorrow")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Status != models.MessageSent {
		t.Errorf("expected sent, got %s (%s)", msg.Status, msg.FailReason)
	}
	if msg.ProviderID != "wamid.42" {
		t.Errorf("provider id not recorded: %q", msg.ProviderID)
	}
	if msg.SentAt == nil {
		t.Error("sent_at not set")
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("gateway auth header: %q", gotAuth)
	}
}

func TestSendGatewayFailureMarksFailed(t *testing.T) {
	db := setupMessageDB(t)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()

	wa := NewWhatsAppSender(config.WhatsAppConfig{Endpoint: gateway.URL}, zap.NewNop())
	svc := NewMessageService(db, nil, wa, zap.NewNop())

	msg, err := svc.Send(context.Background(), 1, 1, models.ChannelWhatsApp, "", "hello")
	if err != nil {
		t.Fatalf("send returned error for delivery failure: %v", err)
	}
	if msg.Status != models.MessageFailed {
		t.Errorf("expected failed, got %s", msg.Status)
	}
	if msg.FailReason == "" {
		t.Error("fail reason missing")
	}
}

func TestSendUnconfiguredChannel(t *testing.T) {
	db := setupMessageDB(t)
	svc := NewMessageService(db, nil, nil, zap.NewNop())

	_, err := svc.Send(context.Background(), 1, 1, models.ChannelEmail, "subject", "body")
	if err != ErrChannelNotConfigured {
		t.Fatalf("expected ErrChannelNotConfigured, got %v", err)
	}

	// Nothing should be queued when the channel is off.
	var count int64
	db.Model(&models.Message{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no rows, got %d", count)
	}
}

func TestSendMissingRecipientAddress(t *testing.T) {
	db := setupMessageDB(t)
	db.Create(&models.Patient{FirstName: "No", LastName: "Phone"})

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message_id": "x"})
	}))
	defer gateway.Close()

	wa := NewWhatsAppSender(config.WhatsAppConfig{Endpoint: gateway.URL}, zap.NewNop())
	svc := NewMessageService(db, nil, wa, zap.NewNop())

	_, err := svc.Send(context.Background(), 2, 1, models.ChannelWhatsApp, "", "hi")
	if err != ErrNoRecipientAddress {
		t.Fatalf("expected ErrNoRecipientAddress, got %v", err)
	}
}
