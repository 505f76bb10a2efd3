package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/internal/invoicing"
	"github.com/clinicdesk/crm/internal/models"
)

func setupInvoiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Patient{},
		&models.Service{}, &models.ServiceGroup{}, &models.ServiceGroupLink{},
		&models.Consultation{}, &models.ConsultationItem{}, &models.ConsultationInstallment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.Create(&models.User{Email: "doc@example.com", Password: "x"})
	db.Create(&models.Patient{FirstName: "Ana", LastName: "Diaz"})
	db.Create(&models.Service{Name: "Consultation", BasePrice: decimal.NewFromInt(100)})
	twenty := decimal.NewFromInt(20)
	db.Create(&models.ServiceGroup{Name: "Promo", DiscountPercent: &twenty})
	db.Create(&models.ServiceGroupLink{ServiceGroupID: 1, ServiceID: 1})
	return db
}

func TestLoadCatalogSnapshot(t *testing.T) {
	db := setupInvoiceDB(t)
	svc := NewInvoiceService(db, zap.NewNop())

	catalog, err := svc.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	entry, ok := catalog.Service(1)
	if !ok || entry.Name != "Consultation" {
		t.Fatalf("service missing from snapshot: %+v", entry)
	}
	group, ok := catalog.Group(1)
	if !ok || group.DiscountPercent == nil || !group.DiscountPercent.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("group discount missing: %+v", group)
	}
	if len(catalog.LinksFor(1)) != 1 {
		t.Fatalf("expected 1 link, got %d", len(catalog.LinksFor(1)))
	}
}

func TestSubmitRollsBackNothingOnValidationError(t *testing.T) {
	db := setupInvoiceDB(t)
	svc := NewInvoiceService(db, zap.NewNop())

	_, err := svc.Submit(context.Background(), 1, 1, "", invoicing.DraftPayload{
		PaymentMethod: "Cash",
		PaymentTerm:   "full",
		// no line items
	})
	if err != invoicing.ErrNoLineItems {
		t.Fatalf("expected ErrNoLineItems, got %v", err)
	}

	var count int64
	db.Model(&models.Consultation{}).Count(&count)
	if count != 0 {
		t.Errorf("validation failure persisted %d rows", count)
	}
}

func TestDeleteRemovesBillingRows(t *testing.T) {
	db := setupInvoiceDB(t)
	svc := NewInvoiceService(db, zap.NewNop())

	cons, err := svc.Submit(context.Background(), 1, 1, "", invoicing.DraftPayload{
		PaymentMethod: "Bank transfer",
		PaymentTerm:   "installment",
		Lines:         []invoicing.LinePayload{{ServiceID: 1, Quantity: 1}},
		Installments: []invoicing.InstallmentPayload{
			{Percent: "50", DueDate: "2026-09-01"},
			{Percent: "50", DueDate: "2026-10-01"},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Archived records may still be deleted.
	if _, err := svc.Archive(context.Background(), cons.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := svc.Delete(context.Background(), cons.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var items, installments, consultations int64
	db.Model(&models.ConsultationItem{}).Count(&items)
	db.Model(&models.ConsultationInstallment{}).Count(&installments)
	db.Unscoped().Model(&models.Consultation{}).Count(&consultations)
	if items != 0 || installments != 0 || consultations != 0 {
		t.Errorf("orphan rows after delete: items=%d installments=%d consultations=%d",
			items, installments, consultations)
	}
}

func TestRevenueBucketsPatientScope(t *testing.T) {
	db := setupInvoiceDB(t)
	db.Create(&models.Patient{FirstName: "Bruno", LastName: "Silva"})
	svc := NewInvoiceService(db, zap.NewNop())

	mk := func(patientID uint, status string, total int64) {
		db.Create(&models.Consultation{
			PatientID: patientID, PractitionerID: 1,
			Kind: models.KindInvoice, PaymentMethod: "Cash", PaymentTerm: "full",
			TotalAmount: decimal.NewFromInt(total), InvoiceStatus: status,
		})
	}
	mk(1, "paid", 100)
	mk(2, "unpaid", 70)

	all, err := svc.RevenueBuckets(context.Background(), 0)
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	if all.Gross.StringFixed(2) != "170.00" {
		t.Errorf("gross: expected 170.00, got %s", all.Gross)
	}

	one, err := svc.RevenueBuckets(context.Background(), 2)
	if err != nil {
		t.Fatalf("buckets scoped: %v", err)
	}
	if one.Gross.StringFixed(2) != "70.00" || one.Unpaid.StringFixed(2) != "70.00" {
		t.Errorf("scoped buckets wrong: %+v", one)
	}
}
