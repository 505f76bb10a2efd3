package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

type DealHandler struct {
	db *gorm.DB
}

func NewDealHandler(db *gorm.DB) *DealHandler {
	return &DealHandler{db: db}
}

type dealPayload struct {
	PatientID    uint   `json:"patient_id"`
	Title        string `json:"title"`
	Stage        string `json:"stage,omitempty"`
	Value        string `json:"value,omitempty"`
	AssignedToID *uint  `json:"assigned_to_id,omitempty"`
}

// List returns the pipeline, grouped by stage for the board view.
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	db := h.db.Preload("Patient")
	if pid := r.URL.Query().Get("patient_id"); pid != "" {
		db = db.Where("patient_id = ?", pid)
	}

	var deals []models.Deal
	db.Order("created_at DESC").Find(&deals)

	board := make(map[models.DealStage][]models.Deal, len(models.DealStages))
	for _, st := range models.DealStages {
		board[st] = []models.Deal{}
	}
	for _, d := range deals {
		board[d.Stage] = append(board[d.Stage], d)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"stages": models.DealStages,
		"board":  board,
	})
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in dealPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	validation.Required("title", in.Title, v)
	if in.PatientID == 0 {
		v["patient_id"] = "required"
	}
	stage := models.DealStageNew
	if in.Stage != "" {
		stage = models.DealStage(in.Stage)
		if !models.ValidDealStage(stage) {
			v["stage"] = "invalid_stage"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	deal := models.Deal{
		PatientID:    in.PatientID,
		Title:        in.Title,
		Stage:        stage,
		AssignedToID: in.AssignedToID,
	}
	if in.Value != "" {
		if val, err := decimal.NewFromString(in.Value); err == nil && !val.IsNegative() {
			deal.Value = val
		}
	}
	if deal.IsClosed() {
		now := time.Now()
		deal.ClosedAt = &now
	}

	if err := h.db.Create(&deal).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to create deal")
		return
	}
	httpx.JSON(w, http.StatusCreated, deal)
}

func (h *DealHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var deal models.Deal
	if err := h.db.Preload("Patient").Preload("AssignedTo").First(&deal, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var deal models.Deal
	if err := h.db.First(&deal, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}

	var in dealPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if in.Title != "" {
		deal.Title = in.Title
	}
	if in.Value != "" {
		if val, err := decimal.NewFromString(in.Value); err == nil && !val.IsNegative() {
			deal.Value = val
		}
	}
	if in.AssignedToID != nil {
		deal.AssignedToID = in.AssignedToID
	}
	if in.Stage != "" {
		stage := models.DealStage(in.Stage)
		if !models.ValidDealStage(stage) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
				validation.Violations{"stage": "invalid_stage"})
			return
		}
		wasClosed := deal.IsClosed()
		deal.Stage = stage
		if deal.IsClosed() && !wasClosed {
			now := time.Now()
			deal.ClosedAt = &now
		}
		if !deal.IsClosed() {
			deal.ClosedAt = nil
		}
	}

	if err := h.db.Save(&deal).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update deal")
		return
	}
	httpx.JSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var deal models.Deal
	if err := h.db.First(&deal, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if err := h.db.Delete(&deal).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to delete deal")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
