package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/gate"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

// AdminProfileHandler handles CRUD operations for authorization profiles
// and their permission sets.
type AdminProfileHandler struct {
	DB            *gorm.DB
	CacheResolver *gate.CachedResolver[uint] // To invalidate cache on changes
}

// NewAdminProfileHandler creates a new admin profile handler.
func NewAdminProfileHandler(db *gorm.DB, cacheResolver *gate.CachedResolver[uint]) *AdminProfileHandler {
	return &AdminProfileHandler{DB: db, CacheResolver: cacheResolver}
}

type profilePayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"` // "resource:action" codes
}

// List returns all profiles with their permissions and assigned users.
func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.DB.Preload("Permissions").Preload("Users").Find(&profiles).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to list profiles")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// Create adds a new profile.
func (h *AdminProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in profilePayload
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

	profile := models.Profile{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := h.DB.Create(&profile).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			httpx.JSONErrorMessage(w, http.StatusConflict, "name_already_exists", "a profile with this name exists")
			return
		}
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to create profile")
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

// Update edits a profile's name and description. System profiles keep
// their name.
func (h *AdminProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var profile models.Profile
	if err := h.DB.First(&profile, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in profilePayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if in.Name != "" && !profile.IsSystem {
		profile.Name = strings.TrimSpace(in.Name)
	}
	profile.Description = strings.TrimSpace(in.Description)

	if err := h.DB.Save(&profile).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to update profile")
		return
	}

	// Invalidate all cache since profile may affect multiple users
	if h.CacheResolver != nil {
		h.CacheResolver.InvalidateAll()
	}
	httpx.JSON(w, http.StatusOK, profile)
}

// SavePermissions replaces the profile's permission set from
// "resource:action" codes. Unknown codes are skipped.
func (h *AdminProfileHandler) SavePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var profile models.Profile
	if err := h.DB.First(&profile, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in profilePayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	var perms []models.Permission
	for _, code := range in.Permissions {
		resource, action, found := strings.Cut(code, ":")
		if !found {
			continue
		}
		var perm models.Permission
		if err := h.DB.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err == nil {
			perms = append(perms, perm)
		}
	}
	if err := h.DB.Model(&profile).Association("Permissions").Replace(perms); err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to save permissions")
		return
	}

	if h.CacheResolver != nil {
		h.CacheResolver.InvalidateAll()
	}

	h.DB.Preload("Permissions").First(&profile, id)
	httpx.JSON(w, http.StatusOK, profile)
}

// Delete removes a non-system profile with no assigned users.
func (h *AdminProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var profile models.Profile
	if err := h.DB.Preload("Users").First(&profile, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if profile.IsSystem {
		httpx.JSONErrorMessage(w, http.StatusConflict, "system_profile", "system profiles cannot be deleted")
		return
	}
	if len(profile.Users) > 0 {
		httpx.JSONErrorMessage(w, http.StatusConflict, "record_in_use", "profile still assigned to users")
		return
	}

	if err := h.DB.Select("Permissions").Delete(&profile).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to delete profile")
		return
	}
	if h.CacheResolver != nil {
		h.CacheResolver.InvalidateAll()
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Permissions lists every known permission, for the profile editor.
func (h *AdminProfileHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	var perms []models.Permission
	if err := h.DB.Order("resource_type, action").Find(&perms).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to list permissions")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": perms})
}
