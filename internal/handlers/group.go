package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

type GroupHandler struct {
	db *gorm.DB
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{db: db}
}

type groupPayload struct {
	Name            string `json:"name"`
	DiscountPercent string `json:"discount_percent,omitempty"`
}

type groupMemberPayload struct {
	ServiceID        uint   `json:"service_id"`
	DiscountOverride string `json:"discount_override,omitempty"`
}

type groupMembersPayload struct {
	Members []groupMemberPayload `json:"members"`
}

// parsePercent parses an optional percentage string, clamped to [0,100].
// Empty or unparseable input yields nil (no discount).
func parsePercent(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	if p.IsNegative() {
		p = decimal.Zero
	}
	if p.GreaterThan(decimal.NewFromInt(100)) {
		p = decimal.NewFromInt(100)
	}
	return &p
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	var groups []models.ServiceGroup
	h.db.Preload("Links.Service").Order("name").Find(&groups)
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in groupPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	group := models.ServiceGroup{
		Name:            in.Name,
		DiscountPercent: parsePercent(in.DiscountPercent),
	}
	if err := h.db.Create(&group).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to create group")
		return
	}
	httpx.JSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var group models.ServiceGroup
	if err := h.db.Preload("Links.Service").First(&group, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var group models.ServiceGroup
	if err := h.db.First(&group, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in groupPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if in.Name != "" {
		group.Name = in.Name
	}
	group.DiscountPercent = parsePercent(in.DiscountPercent)

	if err := h.db.Save(&group).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update group")
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

// SetMembers replaces the group's membership with the given list. Unknown
// service ids are skipped rather than failing the whole request.
func (h *GroupHandler) SetMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var group models.ServiceGroup
	if err := h.db.First(&group, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in groupMembersPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_group_id = ?", id).Delete(&models.ServiceGroupLink{}).Error; err != nil {
			return err
		}
		for _, m := range in.Members {
			var count int64
			tx.Model(&models.Service{}).Where("id = ?", m.ServiceID).Count(&count)
			if count == 0 {
				continue
			}
			link := models.ServiceGroupLink{
				ServiceGroupID:   id,
				ServiceID:        m.ServiceID,
				DiscountOverride: parsePercent(m.DiscountOverride),
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update members")
		return
	}

	h.db.Preload("Links.Service").First(&group, id)
	httpx.JSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var group models.ServiceGroup
	if err := h.db.First(&group, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_group_id = ?", id).Delete(&models.ServiceGroupLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to delete group")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
