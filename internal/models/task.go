package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is a follow-up item for a staff member, optionally tied to a
// patient or a deal. Implements the Ownable interface so the ownership
// policy can restrict edits to the assignee.
type Task struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PatientID *uint    `gorm:"index" json:"patient_id,omitempty"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	DealID    *uint    `gorm:"index" json:"deal_id,omitempty"`
	Deal      *Deal    `gorm:"foreignKey:DealID" json:"deal,omitempty"`

	Title   string     `gorm:"size:255;not null" json:"title"`
	Details string     `gorm:"type:text" json:"details,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Done    bool       `gorm:"default:false" json:"done"`
	DoneAt  *time.Time `json:"done_at,omitempty"`

	AssignedToID uint  `gorm:"index;not null" json:"assigned_to_id"`
	AssignedTo   *User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedByID  uint  `gorm:"index" json:"created_by_id"`
}

// GetUserID implements the Ownable interface: the assignee owns the task.
func (t *Task) GetUserID() uint {
	return t.AssignedToID
}
