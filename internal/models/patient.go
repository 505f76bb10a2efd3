package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Patient is a clinic patient record. Patients are shared clinic-wide;
// access is controlled by profile permissions, not per-record ownership.
type Patient struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// CreatedByID records which staff member opened the file.
	CreatedByID uint  `gorm:"index" json:"created_by_id"`
	CreatedBy   *User `gorm:"foreignKey:CreatedByID" json:"-"`

	FirstName string     `gorm:"size:100;not null" json:"first_name"`
	LastName  string     `gorm:"size:100;not null" json:"last_name"`
	Email     string     `gorm:"size:255" json:"email,omitempty"`
	Phone     string     `gorm:"size:50" json:"phone,omitempty"`
	WhatsApp  string     `gorm:"size:50" json:"whatsapp,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `gorm:"size:20" json:"gender,omitempty"`

	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	// MedicalNotes is free-text background (allergies, history).
	MedicalNotes string `gorm:"type:text" json:"medical_notes,omitempty"`

	Consultations []Consultation `gorm:"foreignKey:PatientID" json:"consultations,omitempty"`
	Deals         []Deal         `gorm:"foreignKey:PatientID" json:"deals,omitempty"`
}

// FullName returns "First Last" with missing parts trimmed away.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
