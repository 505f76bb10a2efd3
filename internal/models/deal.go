package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DealStage is the pipeline position of a deal.
type DealStage string

const (
	DealStageNew       DealStage = "new"
	DealStageContacted DealStage = "contacted"
	DealStageQualified DealStage = "qualified"
	DealStageWon       DealStage = "won"
	DealStageLost      DealStage = "lost"
)

// DealStages lists the pipeline columns in display order.
var DealStages = []DealStage{DealStageNew, DealStageContacted, DealStageQualified, DealStageWon, DealStageLost}

// ValidDealStage reports whether s is a known stage.
func ValidDealStage(s DealStage) bool {
	for _, st := range DealStages {
		if s == st {
			return true
		}
	}
	return false
}

// Deal is one opportunity in the CRM pipeline, attached to a patient.
type Deal struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PatientID uint     `gorm:"index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`

	Title string          `gorm:"size:255;not null" json:"title"`
	Stage DealStage       `gorm:"size:20;default:'new'" json:"stage"`
	Value decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"value"`

	AssignedToID *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

// IsClosed reports whether the deal reached a terminal stage.
func (d *Deal) IsClosed() bool {
	return d.Stage == DealStageWon || d.Stage == DealStageLost
}
