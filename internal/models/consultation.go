package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/internal/invoicing"
)

// ConsultationKind distinguishes the record types kept in a patient's
// consultation history.
type ConsultationKind string

const (
	KindNote         ConsultationKind = "note"
	KindPrescription ConsultationKind = "prescription"
	KindInvoice      ConsultationKind = "invoice"
)

// Consultation is one entry in a patient's medical history. Invoice-kind
// consultations carry billing state; the other kinds carry text only.
type Consultation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PatientID uint     `gorm:"index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"-"`

	PractitionerID uint  `gorm:"index;not null" json:"practitioner_id"`
	Practitioner   *User `gorm:"foreignKey:PractitionerID" json:"practitioner,omitempty"`

	Kind  ConsultationKind `gorm:"size:20;not null" json:"kind"`
	Title string           `gorm:"size:255" json:"title,omitempty"`
	Body  string           `gorm:"type:text" json:"body,omitempty"`

	// ScheduledAt is when the consultation takes (or took) place;
	// distinct from CreatedAt, which is when the record was entered.
	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at,omitempty"`

	// Archived hides the record from active lists and freezes billing
	// transitions. Orthogonal to InvoiceStatus.
	Archived bool `gorm:"default:false;index" json:"archived"`

	// Billing fields, populated for invoice-kind consultations only.
	PaymentMethod string          `gorm:"size:50" json:"payment_method,omitempty"`
	PaymentTerm   string          `gorm:"size:20" json:"payment_term,omitempty"`
	ExtraOption   string          `gorm:"size:20" json:"extra_option,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	InvoiceStatus string          `gorm:"size:20" json:"invoice_status,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`

	Items        []ConsultationItem        `gorm:"foreignKey:ConsultationID" json:"items,omitempty"`
	Installments []ConsultationInstallment `gorm:"foreignKey:ConsultationID" json:"installments,omitempty"`
}

// IsInvoice reports whether the consultation carries billing state.
func (c *Consultation) IsInvoice() bool {
	return c.Kind == KindInvoice
}

// State maps the persisted billing columns onto the invoice state machine.
func (c *Consultation) State() invoicing.State {
	return invoicing.State{
		Status:        invoicing.Status(c.InvoiceStatus),
		Archived:      c.Archived,
		Complimentary: c.ExtraOption == string(invoicing.ExtraComplimentary),
	}
}

// ApplyState writes the state machine's outcome back onto the row.
func (c *Consultation) ApplyState(s invoicing.State) {
	c.InvoiceStatus = string(s.Status)
	c.Archived = s.Archived
	if s.Status == invoicing.StatusPaid && c.PaidAt == nil {
		now := time.Now()
		c.PaidAt = &now
	}
}

// ConsultationItem is one billed line on an invoice consultation. The
// service name and unit price are copied at submit time so later catalog
// edits never rewrite history.
type ConsultationItem struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ConsultationID uint `gorm:"index;not null" json:"consultation_id"`

	ServiceID   uint   `gorm:"index" json:"service_id"`
	ServiceName string `gorm:"size:255;not null" json:"service_name"`

	Quantity  int             `gorm:"default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"line_total"`

	SourceGroupID          *uint            `json:"source_group_id,omitempty"`
	AppliedDiscountPercent *decimal.Decimal `gorm:"type:decimal(5,2)" json:"applied_discount_percent,omitempty"`
}

// ConsultationInstallment is one allocation entry of an installment plan.
// Percent keeps its unrounded value; rounding happens only on the sum when
// the plan is validated.
type ConsultationInstallment struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ConsultationID uint `gorm:"index;not null" json:"consultation_id"`

	// EntryID is the stable identity assigned when the entry was created
	// in the editor, kept through submit.
	EntryID  string          `gorm:"size:36" json:"entry_id"`
	Percent  decimal.Decimal `gorm:"type:decimal(8,4);default:0" json:"percent"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"amount"`
	DueDate  string          `gorm:"size:50" json:"due_date,omitempty"`
	Position int             `gorm:"default:0" json:"position"`
}
