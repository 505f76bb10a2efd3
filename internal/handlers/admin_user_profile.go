package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/gate"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
)

// AdminUserProfileHandler assigns authorization profiles to users.
type AdminUserProfileHandler struct {
	DB            *gorm.DB
	CacheResolver *gate.CachedResolver[uint]
}

// NewAdminUserProfileHandler creates a new admin user-profile handler.
func NewAdminUserProfileHandler(db *gorm.DB, cacheResolver *gate.CachedResolver[uint]) *AdminUserProfileHandler {
	return &AdminUserProfileHandler{DB: db, CacheResolver: cacheResolver}
}

// List returns all users with their assigned profile.
func (h *AdminUserProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.Preload("Profile").Order("email").Find(&users).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to list users")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

type assignProfilePayload struct {
	ProfileID *uint `json:"profile_id"` // null unassigns
}

// AssignProfile sets (or clears) a user's profile and invalidates their
// cached permissions.
func (h *AdminUserProfileHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in assignProfilePayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	if in.ProfileID != nil {
		var profile models.Profile
		if err := h.DB.First(&profile, *in.ProfileID).Error; err != nil {
			httpx.JSONErrorMessage(w, http.StatusNotFound, "profile_not_found", "no such profile")
			return
		}
	}

	user.ProfileID = in.ProfileID
	if err := h.DB.Save(&user).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "db_error", "failed to assign profile")
		return
	}

	if h.CacheResolver != nil {
		h.CacheResolver.Invalidate(user.ID)
	}

	h.DB.Preload("Profile").First(&user, id)
	httpx.JSON(w, http.StatusOK, user)
}
