package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

type PatientHandler struct {
	db *gorm.DB
}

func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{db: db}
}

type patientPayload struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	WhatsApp     string `json:"whatsapp,omitempty"`
	BirthDate    string `json:"birth_date,omitempty"` // YYYY-MM-DD
	Gender       string `json:"gender,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	MedicalNotes string `json:"medical_notes,omitempty"`
}

func (p patientPayload) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("first_name", p.FirstName, v)
	validation.Required("last_name", p.LastName, v)
	if p.Email != "" {
		validation.Email("email", p.Email, v)
	}
	if p.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", p.BirthDate); err != nil {
			v["birth_date"] = "invalid_date"
		}
	}
	return v
}

func (p patientPayload) apply(patient *models.Patient) {
	patient.FirstName = p.FirstName
	patient.LastName = p.LastName
	patient.Email = p.Email
	patient.Phone = p.Phone
	patient.WhatsApp = p.WhatsApp
	patient.Gender = p.Gender
	patient.Address = p.Address
	patient.City = p.City
	patient.PostalCode = p.PostalCode
	patient.Country = p.Country
	patient.MedicalNotes = p.MedicalNotes
	patient.BirthDate = nil
	if p.BirthDate != "" {
		if t, err := time.Parse("2006-01-02", p.BirthDate); err == nil {
			patient.BirthDate = &t
		}
	}
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 20
	offset := (page - 1) * limit

	db := h.db.Model(&models.Patient{})
	if query != "" {
		like := "%" + query + "%"
		db = db.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?",
			like, like, like, like)
	}

	var total int64
	db.Count(&total)

	var patients []models.Patient
	db.Order("last_name, first_name").Limit(limit).Offset(offset).Find(&patients)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"patients": patients,
		"page":     page,
		"total":    total,
		"limit":    limit,
	})
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in patientPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	patient := models.Patient{CreatedByID: userID}
	in.apply(&patient)

	if err := h.db.Create(&patient).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to create patient")
		return
	}
	httpx.JSON(w, http.StatusCreated, patient)
}

func (h *PatientHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patient models.Patient
	if err := h.db.First(&patient, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, patient)
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patient models.Patient
	if err := h.db.First(&patient, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in patientPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	in.apply(&patient)
	if err := h.db.Save(&patient).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update patient")
		return
	}
	httpx.JSON(w, http.StatusOK, patient)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patient models.Patient
	if err := h.db.First(&patient, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if err := h.db.Delete(&patient).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to delete patient")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
