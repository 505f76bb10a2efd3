package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/internal/services"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.Permission{},
		&models.Patient{}, &models.Deal{}, &models.Task{}, &models.Note{},
		&models.Message{},
		&models.Service{}, &models.ServiceGroup{}, &models.ServiceGroupLink{},
		&models.Consultation{}, &models.ConsultationItem{}, &models.ConsultationInstallment{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	mustCreate := func(v any) {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	mustCreate(&models.Service{Name: "Consultation", BasePrice: decimal.NewFromInt(100)})
	mustCreate(&models.Service{Name: "Cleaning", BasePrice: decimal.NewFromInt(50)})
	mustCreate(&models.Service{Name: "X-Ray", BasePrice: decimal.NewFromInt(80)})

	ten := decimal.NewFromInt(10)
	mustCreate(&models.ServiceGroup{Name: "Checkup Pack", DiscountPercent: &ten})
	mustCreate(&models.ServiceGroupLink{ServiceGroupID: 1, ServiceID: 1})
	mustCreate(&models.ServiceGroupLink{ServiceGroupID: 1, ServiceID: 2})

	mustCreate(&models.Patient{FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com"})
	mustCreate(&models.User{Email: "doc@example.com", Password: "x"})
}

func newInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return NewInvoiceHandler(services.NewInvoiceService(db, zap.NewNop()))
}

func authedRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithUserID(req.Context(), 1))
}

func TestInvoicePreviewComputesTotals(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	h := newInvoiceHandler(db)

	body := map[string]any{
		"payment_method": "Cash",
		"payment_term":   "full",
		"line_items": []map[string]any{
			{"service_id": 1, "quantity": 2, "unit_price": ""},
			{"service_id": 3, "quantity": 1, "unit_price": "75.50"},
		},
	}

	rr := httptest.NewRecorder()
	h.Preview(rr, authedRequest(http.MethodPost, "/invoices/preview", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Total string `json:"total"`
		Lines []struct {
			ServiceName string `json:"service_name"`
			LineTotal   string `json:"line_total"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != "275.5" {
		t.Errorf("expected total 275.5, got %s", out.Total)
	}
	if len(out.Lines) != 2 || out.Lines[0].ServiceName != "Consultation" {
		t.Errorf("unexpected lines: %+v", out.Lines)
	}

	// Preview must not persist anything.
	var count int64
	db.Model(&models.Consultation{}).Count(&count)
	if count != 0 {
		t.Errorf("preview persisted %d consultations", count)
	}
}

func TestInvoicePreviewValidationOrder(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	h := newInvoiceHandler(db)

	cases := []struct {
		name string
		body map[string]any
		code string
	}{
		{
			name: "missing payment method first",
			body: map[string]any{"payment_term": "full"},
			code: "missing_payment_method",
		},
		{
			name: "no line items",
			body: map[string]any{"payment_method": "Cash", "payment_term": "full"},
			code: "no_line_items",
		},
		{
			name: "installment plan without entries",
			body: map[string]any{
				"payment_method": "Online Payment",
				"payment_term":   "installment",
				"line_items":     []map[string]any{{"service_id": 1, "quantity": 1}},
			},
			code: "no_installments",
		},
		{
			name: "incomplete allocation",
			body: map[string]any{
				"payment_method": "Online Payment",
				"payment_term":   "installment",
				"line_items":     []map[string]any{{"service_id": 1, "quantity": 1}},
				"installments": []map[string]any{
					{"percent": "33.33"}, {"percent": "33.33"}, {"percent": "33.33"},
				},
			},
			code: "incomplete_allocation",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Preview(rr, authedRequest(http.MethodPost, "/invoices/preview", tc.body))
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
			}
			var out struct {
				Error string `json:"error"`
			}
			json.Unmarshal(rr.Body.Bytes(), &out)
			if out.Error != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, out.Error)
			}
		})
	}
}

func TestInvoiceSubmitPersistsSnapshot(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	h := newInvoiceHandler(db)

	body := map[string]any{
		"patient_id": 1,
		"title":      "Annual checkup",
		"draft": map[string]any{
			"payment_method": "Insurance",
			"payment_term":   "installment",
			"line_items": []map[string]any{
				{"service_id": 1, "quantity": 1, "unit_price": ""},
				{"service_id": 2, "quantity": 3, "unit_price": ""},
			},
			"installments": []map[string]any{
				{"percent": "60", "due_date": "2026-09-15"},
				{"percent": "40", "due_date": "2026-10-15"},
			},
		},
	}

	rr := httptest.NewRecorder()
	h.Submit(rr, authedRequest(http.MethodPost, "/invoices", body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var cons models.Consultation
	if err := db.Preload("Items").Preload("Installments").First(&cons).Error; err != nil {
		t.Fatalf("load consultation: %v", err)
	}
	if cons.Kind != models.KindInvoice {
		t.Errorf("expected invoice kind, got %s", cons.Kind)
	}
	if cons.InvoiceStatus != "unpaid" {
		t.Errorf("expected unpaid, got %s", cons.InvoiceStatus)
	}
	if cons.TotalAmount.StringFixed(2) != "250.00" {
		t.Errorf("expected total 250.00, got %s", cons.TotalAmount)
	}
	if len(cons.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(cons.Items))
	}
	// Service names are copied at submit time.
	if cons.Items[0].ServiceName != "Consultation" || cons.Items[1].ServiceName != "Cleaning" {
		t.Errorf("service names not snapshotted: %+v", cons.Items)
	}
	if len(cons.Installments) != 2 {
		t.Fatalf("expected 2 installments, got %d", len(cons.Installments))
	}
	if cons.Installments[0].Amount.StringFixed(2) != "150.00" {
		t.Errorf("expected first installment 150.00, got %s", cons.Installments[0].Amount)
	}
	if cons.Installments[1].Amount.StringFixed(2) != "100.00" {
		t.Errorf("expected second installment 100.00, got %s", cons.Installments[1].Amount)
	}
	if cons.Installments[0].EntryID == "" {
		t.Error("installment entry id missing")
	}

	// Catalog edits after submission never rewrite history.
	db.Model(&models.Service{}).Where("id = ?", 1).Update("name", "Renamed")
	var item models.ConsultationItem
	db.First(&item, cons.Items[0].ID)
	if item.ServiceName != "Consultation" {
		t.Errorf("snapshot changed after catalog edit: %s", item.ServiceName)
	}
}

func TestInvoicePayTransitions(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	h := newInvoiceHandler(db)

	submit := func(extra string) uint {
		t.Helper()
		draft := map[string]any{
			"payment_method": "Cash",
			"payment_term":   "full",
			"line_items":     []map[string]any{{"service_id": 1, "quantity": 1}},
		}
		if extra != "" {
			draft["extra_option"] = extra
		}
		rr := httptest.NewRecorder()
		h.Submit(rr, authedRequest(http.MethodPost, "/invoices", map[string]any{
			"patient_id": 1, "draft": draft,
		}))
		if rr.Code != http.StatusCreated {
			t.Fatalf("submit failed: %d %s", rr.Code, rr.Body.String())
		}
		var out struct {
			ID uint `json:"id"`
		}
		json.Unmarshal(rr.Body.Bytes(), &out)
		return out.ID
	}

	pay := func(id uint) *httptest.ResponseRecorder {
		req := authedRequest(http.MethodPost, "/consultations/"+strconv.Itoa(int(id))+"/pay", nil)
		req.SetPathValue("id", strconv.Itoa(int(id)))
		rr := httptest.NewRecorder()
		h.Pay(rr, req)
		return rr
	}

	// Normal invoice: unpaid → paid, second pay rejected.
	id := submit("")
	if rr := pay(id); rr.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var cons models.Consultation
	db.First(&cons, id)
	if cons.InvoiceStatus != "paid" || cons.PaidAt == nil {
		t.Errorf("expected paid with timestamp, got %s %v", cons.InvoiceStatus, cons.PaidAt)
	}
	if rr := pay(id); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("double pay: expected 422, got %d", rr.Code)
	}

	// Complimentary invoices can never be paid.
	compID := submit("complimentary")
	if rr := pay(compID); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("complimentary pay: expected 422, got %d", rr.Code)
	}

	// Archived invoices are read-only.
	archID := submit("")
	db.Model(&models.Consultation{}).Where("id = ?", archID).Update("archived", true)
	if rr := pay(archID); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("archived pay: expected 422, got %d", rr.Code)
	}
}

func TestRevenueSummaryBuckets(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := services.NewInvoiceService(db, zap.NewNop())
	h := NewSummaryHandler(svc)

	mk := func(status, extra string, total int64, archived bool) {
		t.Helper()
		err := db.Create(&models.Consultation{
			PatientID:      1,
			PractitionerID: 1,
			Kind:           models.KindInvoice,
			PaymentMethod:  "Cash",
			PaymentTerm:    "full",
			ExtraOption:    extra,
			TotalAmount:    decimal.NewFromInt(total),
			InvoiceStatus:  status,
			Archived:       archived,
		}).Error
		if err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
	}

	mk("paid", "", 100, false)
	mk("unpaid", "", 40, false)
	mk("unpaid", "complimentary", 500, false)
	mk("paid", "", 999, true) // archived, excluded

	rr := httptest.NewRecorder()
	h.Revenue(rr, authedRequest(http.MethodGet, "/summary/revenue", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out map[string]string
	json.Unmarshal(rr.Body.Bytes(), &out)
	if out["gross"] != "640.00" {
		t.Errorf("gross: expected 640.00, got %s", out["gross"])
	}
	if out["paid"] != "100.00" {
		t.Errorf("paid: expected 100.00, got %s", out["paid"])
	}
	if out["unpaid"] != "40.00" {
		t.Errorf("unpaid: expected 40.00, got %s", out["unpaid"])
	}
	if out["complimentary"] != "500.00" {
		t.Errorf("complimentary: expected 500.00, got %s", out["complimentary"])
	}
}
