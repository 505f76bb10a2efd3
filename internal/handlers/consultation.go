package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/internal/services"
	"github.com/clinicdesk/crm/validation"
)

type ConsultationHandler struct {
	db      *gorm.DB
	invoice *services.InvoiceService
}

func NewConsultationHandler(db *gorm.DB, invoice *services.InvoiceService) *ConsultationHandler {
	return &ConsultationHandler{db: db, invoice: invoice}
}

type consultationPayload struct {
	PatientID   uint   `json:"patient_id"`
	Kind        string `json:"kind"`
	Title       string `json:"title,omitempty"`
	Body        string `json:"body,omitempty"`
	ScheduledAt string `json:"scheduled_at,omitempty"` // RFC 3339
}

func parseScheduledAt(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

// List returns a patient's consultation history, newest first. Archived
// records are hidden unless ?archived=1.
func (h *ConsultationHandler) List(w http.ResponseWriter, r *http.Request) {
	db := h.db.Preload("Items").Preload("Installments").Preload("Practitioner")
	if pid := r.URL.Query().Get("patient_id"); pid != "" {
		db = db.Where("patient_id = ?", pid)
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		db = db.Where("kind = ?", kind)
	}
	if r.URL.Query().Get("archived") == "1" {
		db = db.Where("archived = ?", true)
	} else {
		db = db.Where("archived = ?", false)
	}

	var consultations []models.Consultation
	db.Order("created_at DESC").Find(&consultations)
	httpx.JSON(w, http.StatusOK, map[string]any{"consultations": consultations})
}

// Create records a note or prescription consultation. Invoice-kind
// consultations go through the invoice submit endpoint instead.
func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in consultationPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	if in.PatientID == 0 {
		v["patient_id"] = "required"
	}
	validation.OneOf("kind", in.Kind, []string{string(models.KindNote), string(models.KindPrescription)}, v)
	validation.Required("body", in.Body, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	cons := models.Consultation{
		PatientID:      in.PatientID,
		PractitionerID: userID,
		Kind:           models.ConsultationKind(in.Kind),
		Title:          in.Title,
		Body:           in.Body,
		ScheduledAt:    parseScheduledAt(in.ScheduledAt),
	}
	if err := h.db.Create(&cons).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to create consultation")
		return
	}
	httpx.JSON(w, http.StatusCreated, cons)
}

func (h *ConsultationHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var cons models.Consultation
	err := h.db.Preload("Items").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Practitioner").
		First(&cons, id).Error
	if err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cons)
}

// Update edits the text of a note or prescription. Invoice consultations
// are immutable after submission; only state transitions apply.
func (h *ConsultationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var cons models.Consultation
	if err := h.db.First(&cons, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if cons.IsInvoice() {
		httpx.JSONErrorMessage(w, http.StatusConflict, "invoice_immutable", "submitted invoices cannot be edited")
		return
	}
	if cons.Archived {
		httpx.JSONErrorMessage(w, http.StatusConflict, "invoice_archived", "archived records are read-only")
		return
	}

	var in consultationPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if in.Title != "" {
		cons.Title = in.Title
	}
	if in.Body != "" {
		cons.Body = in.Body
	}
	if t := parseScheduledAt(in.ScheduledAt); t != nil {
		cons.ScheduledAt = t
	}
	if err := h.db.Save(&cons).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update consultation")
		return
	}
	httpx.JSON(w, http.StatusOK, cons)
}

// Archive hides the consultation from active views. Idempotent.
func (h *ConsultationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cons, err := h.invoice.Archive(r.Context(), id)
	if err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cons)
}

// Delete permanently removes the consultation, allowed from any state.
func (h *ConsultationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.invoice.Delete(r.Context(), id); err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
