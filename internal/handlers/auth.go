package handlers

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentialsPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", in.Email).First(&user).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		httpx.JSONErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentialsPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "unexpected error")
		return
	}

	user := models.User{
		Email:    in.Email,
		Password: string(hashed),
		Name:     in.Name,
	}
	if err := h.db.Create(&user).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusConflict, "email_taken", "email already registered")
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated user with their profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.db.Preload("Profile.Permissions").First(&user, userID).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
