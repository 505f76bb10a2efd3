package policy

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/gate"
	"github.com/clinicdesk/crm/internal/config"
	"github.com/clinicdesk/crm/internal/handlers"
	"github.com/clinicdesk/crm/internal/presence"
	"github.com/clinicdesk/crm/internal/services"
)

// RouterConfig holds the configured handlers and middleware for the
// application. The server's route table pulls everything from here.
type RouterConfig struct {
	// AuthGate provides authorization checks and middleware
	AuthGate *AuthGate

	// Admin handlers
	AdminProfileHandler     *handlers.AdminProfileHandler
	AdminUserProfileHandler *handlers.AdminUserProfileHandler

	// Auth handler
	AuthHandler *handlers.AuthHandler

	// Business handlers
	PatientHandler      *handlers.PatientHandler
	DealHandler         *handlers.DealHandler
	TaskHandler         *handlers.TaskHandler
	NoteHandler         *handlers.NoteHandler
	ServiceHandler      *handlers.ServiceHandler
	GroupHandler        *handlers.GroupHandler
	ConsultationHandler *handlers.ConsultationHandler
	InvoiceHandler      *handlers.InvoiceHandler
	MessageHandler      *handlers.MessageHandler
	SummaryHandler      *handlers.SummaryHandler

	// PresenceHandler is nil when Redis is not configured.
	PresenceHandler *handlers.PresenceHandler

	// Services
	InvoiceService *services.InvoiceService
	MessageService *services.MessageService
}

// NewRouterConfig wires the authorization gate, services and handlers.
// tracker may be nil; presence routes are then not registered.
func NewRouterConfig(db *gorm.DB, cfg *config.Config, log *zap.Logger, tracker *presence.Tracker) *RouterConfig {
	// Authorization gate with a 5-minute profile cache
	authGate := NewAuthGate(db, 5*time.Minute)

	// Tasks are the one per-record owned resource: only the assignee
	// (or an admin) may modify them.
	isAdmin := func(ctx context.Context, userID uint) bool {
		profile, err := authGate.CacheResolver.Resolve(ctx, userID)
		if err != nil || profile == nil {
			return false
		}
		return profile.HasPermission(gate.PermissionSuperAdmin)
	}
	authGate.RegisterPolicy("task", NewAdminBypassPolicy(NewOwnershipPolicy(), isAdmin))

	invoiceService := services.NewInvoiceService(db, log)
	emailSender := services.NewEmailSender(cfg.Email, log)
	whatsappSender := services.NewWhatsAppSender(cfg.WhatsApp, log)
	messageService := services.NewMessageService(db, emailSender, whatsappSender, log)

	authorizeTask := func(r *http.Request, action gate.Action, resource any) error {
		return authGate.Authorize(r.Context(), action, "task", resource)
	}

	rc := &RouterConfig{
		AuthGate:                authGate,
		AdminProfileHandler:     handlers.NewAdminProfileHandler(db, authGate.CacheResolver),
		AdminUserProfileHandler: handlers.NewAdminUserProfileHandler(db, authGate.CacheResolver),
		AuthHandler:             handlers.NewAuthHandler(db),
		PatientHandler:          handlers.NewPatientHandler(db),
		DealHandler:             handlers.NewDealHandler(db),
		TaskHandler:             handlers.NewTaskHandler(db, authorizeTask),
		NoteHandler:             handlers.NewNoteHandler(db),
		ServiceHandler:          handlers.NewServiceHandler(db),
		GroupHandler:            handlers.NewGroupHandler(db),
		ConsultationHandler:     handlers.NewConsultationHandler(db, invoiceService),
		InvoiceHandler:          handlers.NewInvoiceHandler(invoiceService),
		MessageHandler:          handlers.NewMessageHandler(messageService),
		SummaryHandler:          handlers.NewSummaryHandler(invoiceService),
		InvoiceService:          invoiceService,
		MessageService:          messageService,
	}
	if tracker != nil {
		rc.PresenceHandler = handlers.NewPresenceHandler(tracker)
	}
	return rc
}
