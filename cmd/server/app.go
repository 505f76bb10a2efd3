package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/gate"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/i18n"
	"github.com/clinicdesk/crm/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Apply global middleware: auth context + language preference
	handler := auth.Middleware(withLanguage(a.mux))
	handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler

	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /signup", ah.Signup)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /me", a.requireAuth(http.HandlerFunc(ah.Me)))

	// Patients
	ph := a.routerCfg.PatientHandler
	a.mux.Handle("GET /patients",
		a.requireAuth(a.requirePermission("patient", gate.ActionList)(http.HandlerFunc(ph.List))))
	a.mux.Handle("POST /patients",
		a.requireAuth(a.requirePermission("patient", gate.ActionCreate)(http.HandlerFunc(ph.Create))))
	a.mux.Handle("GET /patients/{id}",
		a.requireAuth(a.requirePermission("patient", gate.ActionView)(http.HandlerFunc(ph.View))))
	a.mux.Handle("PUT /patients/{id}",
		a.requireAuth(a.requirePermission("patient", gate.ActionUpdate)(http.HandlerFunc(ph.Update))))
	a.mux.Handle("DELETE /patients/{id}",
		a.requireAuth(a.requirePermission("patient", gate.ActionDelete)(http.HandlerFunc(ph.Delete))))

	// CRM pipeline
	dh := a.routerCfg.DealHandler
	a.mux.Handle("GET /deals",
		a.requireAuth(a.requirePermission("deal", gate.ActionList)(http.HandlerFunc(dh.List))))
	a.mux.Handle("POST /deals",
		a.requireAuth(a.requirePermission("deal", gate.ActionCreate)(http.HandlerFunc(dh.Create))))
	a.mux.Handle("GET /deals/{id}",
		a.requireAuth(a.requirePermission("deal", gate.ActionView)(http.HandlerFunc(dh.View))))
	a.mux.Handle("PUT /deals/{id}",
		a.requireAuth(a.requirePermission("deal", gate.ActionUpdate)(http.HandlerFunc(dh.Update))))
	a.mux.Handle("DELETE /deals/{id}",
		a.requireAuth(a.requirePermission("deal", gate.ActionDelete)(http.HandlerFunc(dh.Delete))))

	// Tasks (ownership-checked in the handler)
	th := a.routerCfg.TaskHandler
	a.mux.Handle("GET /tasks",
		a.requireAuth(a.requirePermission("task", gate.ActionList)(http.HandlerFunc(th.List))))
	a.mux.Handle("POST /tasks",
		a.requireAuth(a.requirePermission("task", gate.ActionCreate)(http.HandlerFunc(th.Create))))
	a.mux.Handle("PUT /tasks/{id}",
		a.requireAuth(a.requirePermission("task", gate.ActionUpdate)(http.HandlerFunc(th.Update))))
	a.mux.Handle("POST /tasks/{id}/complete",
		a.requireAuth(a.requirePermission("task", gate.ActionUpdate)(http.HandlerFunc(th.Complete))))
	a.mux.Handle("DELETE /tasks/{id}",
		a.requireAuth(a.requirePermission("task", gate.ActionDelete)(http.HandlerFunc(th.Delete))))

	// Notes
	nh := a.routerCfg.NoteHandler
	a.mux.Handle("GET /notes",
		a.requireAuth(a.requirePermission("note", gate.ActionList)(http.HandlerFunc(nh.List))))
	a.mux.Handle("POST /notes",
		a.requireAuth(a.requirePermission("note", gate.ActionCreate)(http.HandlerFunc(nh.Create))))
	a.mux.Handle("DELETE /notes/{id}",
		a.requireAuth(a.requirePermission("note", gate.ActionDelete)(http.HandlerFunc(nh.Delete))))

	// Service catalog
	sh := a.routerCfg.ServiceHandler
	a.mux.Handle("GET /services",
		a.requireAuth(a.requirePermission("service", gate.ActionList)(http.HandlerFunc(sh.List))))
	a.mux.Handle("POST /services",
		a.requireAuth(a.requirePermission("service", gate.ActionCreate)(http.HandlerFunc(sh.Create))))
	a.mux.Handle("GET /services/{id}",
		a.requireAuth(a.requirePermission("service", gate.ActionView)(http.HandlerFunc(sh.View))))
	a.mux.Handle("PUT /services/{id}",
		a.requireAuth(a.requirePermission("service", gate.ActionUpdate)(http.HandlerFunc(sh.Update))))
	a.mux.Handle("DELETE /services/{id}",
		a.requireAuth(a.requirePermission("service", gate.ActionDelete)(http.HandlerFunc(sh.Delete))))

	// Service groups
	gh := a.routerCfg.GroupHandler
	a.mux.Handle("GET /groups",
		a.requireAuth(a.requirePermission("group", gate.ActionList)(http.HandlerFunc(gh.List))))
	a.mux.Handle("POST /groups",
		a.requireAuth(a.requirePermission("group", gate.ActionCreate)(http.HandlerFunc(gh.Create))))
	a.mux.Handle("GET /groups/{id}",
		a.requireAuth(a.requirePermission("group", gate.ActionView)(http.HandlerFunc(gh.View))))
	a.mux.Handle("PUT /groups/{id}",
		a.requireAuth(a.requirePermission("group", gate.ActionUpdate)(http.HandlerFunc(gh.Update))))
	a.mux.Handle("PUT /groups/{id}/members",
		a.requireAuth(a.requirePermission("group", gate.ActionUpdate)(http.HandlerFunc(gh.SetMembers))))
	a.mux.Handle("DELETE /groups/{id}",
		a.requireAuth(a.requirePermission("group", gate.ActionDelete)(http.HandlerFunc(gh.Delete))))

	// Consultations
	ch := a.routerCfg.ConsultationHandler
	a.mux.Handle("GET /consultations",
		a.requireAuth(a.requirePermission("consultation", gate.ActionList)(http.HandlerFunc(ch.List))))
	a.mux.Handle("POST /consultations",
		a.requireAuth(a.requirePermission("consultation", gate.ActionCreate)(http.HandlerFunc(ch.Create))))
	a.mux.Handle("GET /consultations/{id}",
		a.requireAuth(a.requirePermission("consultation", gate.ActionView)(http.HandlerFunc(ch.View))))
	a.mux.Handle("PUT /consultations/{id}",
		a.requireAuth(a.requirePermission("consultation", gate.ActionUpdate)(http.HandlerFunc(ch.Update))))
	a.mux.Handle("POST /consultations/{id}/archive",
		a.requireAuth(a.requirePermission("consultation", gate.ActionArchive)(http.HandlerFunc(ch.Archive))))
	a.mux.Handle("DELETE /consultations/{id}",
		a.requireAuth(a.requirePermission("consultation", gate.ActionDelete)(http.HandlerFunc(ch.Delete))))

	// Invoices
	ih := a.routerCfg.InvoiceHandler
	a.mux.Handle("POST /invoices/preview",
		a.requireAuth(a.requirePermission("consultation", gate.ActionSubmit)(http.HandlerFunc(ih.Preview))))
	a.mux.Handle("POST /invoices",
		a.requireAuth(a.requirePermission("consultation", gate.ActionSubmit)(http.HandlerFunc(ih.Submit))))
	a.mux.Handle("POST /consultations/{id}/pay",
		a.requireAuth(a.requirePermission("consultation", gate.ActionPay)(http.HandlerFunc(ih.Pay))))

	// Outbound messages
	mh := a.routerCfg.MessageHandler
	a.mux.Handle("GET /messages",
		a.requireAuth(a.requirePermission("message", gate.ActionList)(http.HandlerFunc(mh.History))))
	a.mux.Handle("POST /messages",
		a.requireAuth(a.requirePermission("message", gate.ActionSend)(http.HandlerFunc(mh.Send))))

	// Revenue summary
	suh := a.routerCfg.SummaryHandler
	a.mux.Handle("GET /summary/revenue",
		a.requireAuth(a.requirePermission("summary", gate.ActionView)(http.HandlerFunc(suh.Revenue))))

	// Presence (only when Redis is configured)
	if prh := a.routerCfg.PresenceHandler; prh != nil {
		a.mux.Handle("POST /patients/{id}/presence",
			a.requireAuth(a.requirePermission("patient", gate.ActionView)(http.HandlerFunc(prh.Claim))))
		a.mux.Handle("DELETE /patients/{id}/presence",
			a.requireAuth(a.requirePermission("patient", gate.ActionView)(http.HandlerFunc(prh.Release))))
		a.mux.Handle("GET /patients/{id}/presence",
			a.requireAuth(a.requirePermission("patient", gate.ActionView)(http.HandlerFunc(prh.Holder))))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes (require admin profile with *:* permission)
	// ─────────────────────────────────────────────────────────────────────────
	aph := a.routerCfg.AdminProfileHandler
	auph := a.routerCfg.AdminUserProfileHandler

	a.mux.Handle("GET /admin/profiles",
		a.requireAdmin(http.HandlerFunc(aph.List)))
	a.mux.Handle("POST /admin/profiles",
		a.requireAdmin(http.HandlerFunc(aph.Create)))
	a.mux.Handle("PUT /admin/profiles/{id}",
		a.requireAdmin(http.HandlerFunc(aph.Update)))
	a.mux.Handle("DELETE /admin/profiles/{id}",
		a.requireAdmin(http.HandlerFunc(aph.Delete)))
	a.mux.Handle("PUT /admin/profiles/{id}/permissions",
		a.requireAdmin(http.HandlerFunc(aph.SavePermissions)))
	a.mux.Handle("GET /admin/permissions",
		a.requireAdmin(http.HandlerFunc(aph.Permissions)))

	a.mux.Handle("GET /admin/users",
		a.requireAdmin(http.HandlerFunc(auph.List)))
	a.mux.Handle("PUT /admin/users/{id}/profile",
		a.requireAdmin(http.HandlerFunc(auph.AssignProfile)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// requireAuth wraps a handler to require authentication.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

// requireAdmin wraps a handler to require admin permissions.
func (a *App) requireAdmin(next http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequireAdmin()(next)
}

// requirePermission wraps a handler to require specific resource permission.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequirePermission(resourceType, action)
}

// withLanguage injects the response language from cookie, query or the
// Accept-Language header.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		ctx := i18n.WithLang(r.Context(), lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
