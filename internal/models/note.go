package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is a free-text CRM note on a patient file.
type Note struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PatientID uint     `gorm:"index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"-"`

	AuthorID uint  `gorm:"index;not null" json:"author_id"`
	Author   *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`
}
