package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/i18n"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

type servicePayload struct {
	Name       string `json:"name"`
	BasePrice  string `json:"base_price"`
	CategoryID *uint  `json:"category_id,omitempty"`
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var services []models.Service
	h.db.Order("name").Find(&services)
	httpx.JSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in servicePayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	price := decimal.Zero
	if in.BasePrice != "" {
		p, err := decimal.NewFromString(in.BasePrice)
		if err != nil || p.IsNegative() {
			v["base_price"] = "invalid_price"
		} else {
			price = p
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	svc := models.Service{Name: in.Name, BasePrice: price, CategoryID: in.CategoryID}
	if err := h.db.Create(&svc).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to create service")
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *ServiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var svc models.Service
	if err := h.db.Preload("Groups").First(&svc, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var svc models.Service
	if err := h.db.First(&svc, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in servicePayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if in.Name != "" {
		svc.Name = in.Name
	}
	if in.BasePrice != "" {
		if p, err := decimal.NewFromString(in.BasePrice); err == nil && !p.IsNegative() {
			svc.BasePrice = p
		}
	}
	svc.CategoryID = in.CategoryID

	if err := h.db.Save(&svc).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update service")
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

// Delete removes a catalog service. Services referenced by a group are
// still in use and cannot be removed; submitted invoices are unaffected
// either way because they copy the name and price at submit time.
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var svc models.Service
	if err := h.db.First(&svc, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var linkCount int64
	h.db.Model(&models.ServiceGroupLink{}).Where("service_id = ?", id).Count(&linkCount)
	if linkCount > 0 {
		lang := i18n.Lang(r.Context())
		httpx.JSONErrorMessage(w, http.StatusConflict, "record_in_use", i18n.T(lang, "record_in_use"))
		return
	}

	if err := h.db.Delete(&svc).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to delete service")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
