// Package services holds the business operations behind the HTTP handlers.
package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/internal/invoicing"
	"github.com/clinicdesk/crm/internal/models"
)

// ErrNotInvoice is returned when a billing transition targets a
// consultation that carries no invoice.
var ErrNotInvoice = errors.New("consultation_not_invoice")

// InvoiceService drives the invoice lifecycle: catalog snapshots, draft
// preview, submission and the paid/archived transitions. Preview never
// writes; Submit commits everything in one transaction or nothing.
type InvoiceService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewInvoiceService(db *gorm.DB, log *zap.Logger) *InvoiceService {
	return &InvoiceService{db: db, log: log}
}

// LoadCatalog fetches the service catalog and returns an immutable
// snapshot for one editing or submission pass.
func (s *InvoiceService) LoadCatalog(ctx context.Context) (*invoicing.Catalog, error) {
	var services []models.Service
	if err := s.db.WithContext(ctx).Find(&services).Error; err != nil {
		return nil, err
	}
	var groups []models.ServiceGroup
	if err := s.db.WithContext(ctx).Find(&groups).Error; err != nil {
		return nil, err
	}
	var links []models.ServiceGroupLink
	if err := s.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, err
	}

	entries := make([]invoicing.ServiceEntry, 0, len(services))
	for _, svc := range services {
		entries = append(entries, invoicing.ServiceEntry{
			ID:         svc.ID,
			Name:       svc.Name,
			BasePrice:  svc.BasePrice,
			CategoryID: svc.CategoryID,
		})
	}
	grps := make([]invoicing.ServiceGroup, 0, len(groups))
	for _, g := range groups {
		grps = append(grps, invoicing.ServiceGroup{
			ID:              g.ID,
			Name:            g.Name,
			DiscountPercent: g.DiscountPercent,
		})
	}
	lnks := make([]invoicing.GroupLink, 0, len(links))
	for _, l := range links {
		lnks = append(lnks, invoicing.GroupLink{
			GroupID:          l.ServiceGroupID,
			ServiceID:        l.ServiceID,
			DiscountOverride: l.DiscountOverride,
		})
	}
	return invoicing.NewCatalog(entries, grps, lnks), nil
}

// Preview validates a draft and returns its derived view without touching
// the database. A validation error leaves nothing behind.
func (s *InvoiceService) Preview(ctx context.Context, payload invoicing.DraftPayload) (invoicing.DraftSummary, error) {
	catalog, err := s.LoadCatalog(ctx)
	if err != nil {
		return invoicing.DraftSummary{}, err
	}
	draft := invoicing.DraftFromPayload(catalog, payload)
	if err := draft.Validate(); err != nil {
		return invoicing.DraftSummary{}, err
	}
	return draft.Summarize(), nil
}

// Submit validates the draft and persists it as an invoice consultation.
// Line items copy the service name and resolved unit price so later
// catalog edits never rewrite billing history. All rows are written in a
// single transaction.
func (s *InvoiceService) Submit(ctx context.Context, patientID, practitionerID uint, title string, payload invoicing.DraftPayload) (*models.Consultation, error) {
	catalog, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	draft := invoicing.DraftFromPayload(catalog, payload)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	summary := draft.Summarize()
	state := invoicing.NewSubmittedState(draft.ExtraOption == invoicing.ExtraComplimentary)

	cons := models.Consultation{
		PatientID:      patientID,
		PractitionerID: practitionerID,
		Kind:           models.KindInvoice,
		Title:          title,
		PaymentMethod:  string(draft.PaymentMethod),
		PaymentTerm:    string(draft.PaymentTerm),
		ExtraOption:    string(draft.ExtraOption),
		TotalAmount:    summary.Total,
		InvoiceStatus:  string(state.Status),
		Archived:       state.Archived,
	}
	for _, ls := range summary.Lines {
		cons.Items = append(cons.Items, models.ConsultationItem{
			ServiceID:              ls.ServiceID,
			ServiceName:            ls.ServiceName,
			Quantity:               ls.Quantity,
			UnitPrice:              ls.UnitPrice,
			LineTotal:              ls.LineTotal,
			SourceGroupID:          ls.SourceGroupID,
			AppliedDiscountPercent: ls.AppliedDiscountPercent,
		})
	}
	if draft.PaymentTerm == invoicing.TermInstallment {
		for i, ins := range summary.Installments {
			cons.Installments = append(cons.Installments, models.ConsultationInstallment{
				EntryID:  ins.ID,
				Percent:  ins.Percent,
				Amount:   ins.Amount,
				DueDate:  ins.DueDate,
				Position: i,
			})
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&cons).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice submitted",
		zap.Uint("consultation_id", cons.ID),
		zap.Uint("patient_id", patientID),
		zap.String("total", cons.TotalAmount.StringFixed(2)))
	return &cons, nil
}

// MarkPaid transitions an unpaid invoice to paid.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uint) (*models.Consultation, error) {
	return s.transition(ctx, id, func(st *invoicing.State) error {
		return st.MarkPaid()
	})
}

// Archive hides the consultation from active views. Works on any
// consultation kind; for invoices it freezes further billing transitions.
func (s *InvoiceService) Archive(ctx context.Context, id uint) (*models.Consultation, error) {
	var cons models.Consultation
	if err := s.db.WithContext(ctx).First(&cons, id).Error; err != nil {
		return nil, err
	}
	st := cons.State()
	st.Archive()
	cons.ApplyState(st)
	if err := s.db.WithContext(ctx).Save(&cons).Error; err != nil {
		return nil, err
	}
	return &cons, nil
}

// Delete permanently removes a consultation and its billing rows.
// Deletion is allowed from any state, including archived.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	var cons models.Consultation
	if err := s.db.WithContext(ctx).First(&cons, id).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("consultation_id = ?", id).Delete(&models.ConsultationItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("consultation_id = ?", id).Delete(&models.ConsultationInstallment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&cons).Error
	})
}

// transition loads an invoice consultation, applies fn to its state and
// saves the result.
func (s *InvoiceService) transition(ctx context.Context, id uint, fn func(*invoicing.State) error) (*models.Consultation, error) {
	var cons models.Consultation
	if err := s.db.WithContext(ctx).First(&cons, id).Error; err != nil {
		return nil, err
	}
	if !cons.IsInvoice() {
		return nil, ErrNotInvoice
	}
	st := cons.State()
	if err := fn(&st); err != nil {
		return nil, err
	}
	cons.ApplyState(st)
	if err := s.db.WithContext(ctx).Save(&cons).Error; err != nil {
		return nil, err
	}
	return &cons, nil
}

// RevenueBuckets aggregates all active (non-archived) invoice
// consultations into the paid/unpaid/complimentary buckets. Optionally
// scoped to one patient when patientID is non-zero.
func (s *InvoiceService) RevenueBuckets(ctx context.Context, patientID uint) (invoicing.RevenueSummary, error) {
	var invoices []models.Consultation
	q := s.db.WithContext(ctx).
		Where("kind = ? AND archived = ?", models.KindInvoice, false)
	if patientID != 0 {
		q = q.Where("patient_id = ?", patientID)
	}
	if err := q.Find(&invoices).Error; err != nil {
		return invoicing.RevenueSummary{}, err
	}

	var summary invoicing.RevenueSummary
	for _, inv := range invoices {
		summary.Add(inv.State(), inv.TotalAmount)
	}
	return summary, nil
}
