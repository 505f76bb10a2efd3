package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

type NoteHandler struct {
	db *gorm.DB
}

func NewNoteHandler(db *gorm.DB) *NoteHandler {
	return &NoteHandler{db: db}
}

type notePayload struct {
	PatientID uint   `json:"patient_id"`
	Body      string `json:"body"`
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	db := h.db.Preload("Author")
	if pid := r.URL.Query().Get("patient_id"); pid != "" {
		db = db.Where("patient_id = ?", pid)
	}
	var notes []models.Note
	db.Order("created_at DESC").Find(&notes)
	httpx.JSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in notePayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	validation.Required("body", in.Body, v)
	if in.PatientID == 0 {
		v["patient_id"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	note := models.Note{
		PatientID: in.PatientID,
		AuthorID:  userID,
		Body:      in.Body,
	}
	if err := h.db.Create(&note).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to create note")
		return
	}
	httpx.JSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var note models.Note
	if err := h.db.First(&note, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if err := h.db.Delete(&note).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to delete note")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
