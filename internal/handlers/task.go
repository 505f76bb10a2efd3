package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/gate"
	"github.com/clinicdesk/crm/httpx"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/validation"
)

type TaskHandler struct {
	db        *gorm.DB
	authorize func(r *http.Request, action gate.Action, resource any) error
}

// NewTaskHandler builds the task handler. authorize runs the ownership
// policy: only the assignee (or an admin profile) may update or delete.
func NewTaskHandler(db *gorm.DB, authorize func(r *http.Request, action gate.Action, resource any) error) *TaskHandler {
	return &TaskHandler{db: db, authorize: authorize}
}

type taskPayload struct {
	PatientID    *uint  `json:"patient_id,omitempty"`
	DealID       *uint  `json:"deal_id,omitempty"`
	Title        string `json:"title"`
	Details      string `json:"details,omitempty"`
	DueDate      string `json:"due_date,omitempty"` // YYYY-MM-DD
	AssignedToID uint   `json:"assigned_to_id"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	db := h.db.Preload("Patient").Preload("AssignedTo")
	if r.URL.Query().Get("mine") == "1" {
		userID, _ := auth.UserIDFromContext(r.Context())
		db = db.Where("assigned_to_id = ?", userID)
	}
	if r.URL.Query().Get("open") == "1" {
		db = db.Where("done = ?", false)
	}
	if pid := r.URL.Query().Get("patient_id"); pid != "" {
		db = db.Where("patient_id = ?", pid)
	}

	var tasks []models.Task
	db.Order("due_date IS NULL, due_date, created_at").Find(&tasks)
	httpx.JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in taskPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}

	v := make(validation.Violations)
	validation.Required("title", in.Title, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	task := models.Task{
		PatientID:    in.PatientID,
		DealID:       in.DealID,
		Title:        in.Title,
		Details:      in.Details,
		AssignedToID: in.AssignedToID,
		CreatedByID:  userID,
	}
	if task.AssignedToID == 0 {
		task.AssignedToID = userID
	}
	if in.DueDate != "" {
		if t, err := time.Parse("2006-01-02", in.DueDate); err == nil {
			task.DueDate = &t
		}
	}

	if err := h.db.Create(&task).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to create task")
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var task models.Task
	if err := h.db.First(&task, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if err := h.authorize(r, gate.ActionUpdate, &task); err != nil {
		httpx.JSONErrorMessage(w, http.StatusForbidden, "forbidden", "not the task assignee")
		return
	}

	var in taskPayload
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if in.Title != "" {
		task.Title = in.Title
	}
	task.Details = in.Details
	if in.AssignedToID != 0 {
		task.AssignedToID = in.AssignedToID
	}
	task.DueDate = nil
	if in.DueDate != "" {
		if t, err := time.Parse("2006-01-02", in.DueDate); err == nil {
			task.DueDate = &t
		}
	}

	if err := h.db.Save(&task).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update task")
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

// Complete toggles the task done. Idempotent.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var task models.Task
	if err := h.db.First(&task, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if err := h.authorize(r, gate.ActionUpdate, &task); err != nil {
		httpx.JSONErrorMessage(w, http.StatusForbidden, "forbidden", "not the task assignee")
		return
	}

	if !task.Done {
		now := time.Now()
		task.Done = true
		task.DoneAt = &now
		if err := h.db.Save(&task).Error; err != nil {
			httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to update task")
			return
		}
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var task models.Task
	if err := h.db.First(&task, id).Error; err != nil {
		notFoundOrError(w, err)
		return
	}
	if err := h.authorize(r, gate.ActionDelete, &task); err != nil {
		httpx.JSONErrorMessage(w, http.StatusForbidden, "forbidden", "not the task assignee")
		return
	}
	if err := h.db.Delete(&task).Error; err != nil {
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "failed to delete task")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
