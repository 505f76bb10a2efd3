package invoicing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifyExclusiveBuckets(t *testing.T) {
	cases := []struct {
		state  State
		bucket Bucket
	}{
		{State{Status: StatusUnpaid}, BucketUnpaid},
		{State{Status: StatusPaid}, BucketPaid},
		{State{Status: StatusUnpaid, Complimentary: true}, BucketComplimentary},
		{State{Status: StatusPaid, Complimentary: true}, BucketComplimentary},
		{State{Status: StatusPaid, Archived: true}, BucketPaid},
	}
	for _, tc := range cases {
		if got := Classify(tc.state); got != tc.bucket {
			t.Fatalf("state %+v: expected %s, got %s", tc.state, tc.bucket, got)
		}
	}
}

func TestRevenueSummaryBuckets(t *testing.T) {
	var r RevenueSummary
	r.Add(State{Status: StatusPaid}, dec(t, "300"))
	r.Add(State{Status: StatusUnpaid}, dec(t, "120"))
	r.Add(State{Status: StatusUnpaid, Complimentary: true}, dec(t, "500"))

	if !r.Gross.Equal(dec(t, "920")) {
		t.Fatalf("gross: expected 920, got %s", r.Gross)
	}
	if !r.Paid.Equal(dec(t, "300")) {
		t.Fatalf("paid: expected 300, got %s", r.Paid)
	}
	if !r.Unpaid.Equal(dec(t, "120")) {
		t.Fatalf("unpaid: expected 120, got %s", r.Unpaid)
	}
	// a complimentary 500 contributes 500 to its own bucket and nothing else
	if !r.Complimentary.Equal(dec(t, "500")) {
		t.Fatalf("complimentary: expected 500, got %s", r.Complimentary)
	}
	if !r.Paid.Add(r.Unpaid).Add(r.Complimentary).Equal(r.Gross) {
		t.Fatalf("buckets must partition gross")
	}
}

func TestSummarizeDerivedFields(t *testing.T) {
	d := NewDraft(testCatalog(t))
	d.AddService(1)
	d.SetQuantity(0, "2")
	d.AddGroup(10)
	ins := d.AddInstallment()
	d.SetInstallmentPercent(ins.ID, "50")
	d.SetInstallmentDueDate(ins.ID, "2025-03-01")

	s := d.Summarize()
	if len(s.Lines) != 3 {
		t.Fatalf("expected 3 line summaries, got %d", len(s.Lines))
	}
	if s.Lines[0].ServiceName != "Consultation" {
		t.Fatalf("expected service name, got %q", s.Lines[0].ServiceName)
	}
	if !s.Lines[0].LineTotal.Equal(dec(t, "200")) {
		t.Fatalf("line total: expected 200, got %s", s.Lines[0].LineTotal)
	}
	// 200 + 80 + 180
	if !s.Total.Equal(dec(t, "460")) {
		t.Fatalf("total: expected 460, got %s", s.Total)
	}
	if s.PlanComplete {
		t.Fatalf("50%% plan must not be complete")
	}
	if !s.AllocationTotal.Equal(dec(t, "50")) {
		t.Fatalf("allocation total: expected 50, got %s", s.AllocationTotal)
	}
	if !s.Installments[0].Amount.Equal(dec(t, "230")) {
		t.Fatalf("installment amount: expected 230, got %s", s.Installments[0].Amount)
	}
	if s.Installments[0].DueDate != "2025-03-01" {
		t.Fatalf("due date not carried: %q", s.Installments[0].DueDate)
	}
}

func TestDraftFromPayloadReplaysEditRules(t *testing.T) {
	p := DraftPayload{
		PaymentMethod: "Cash",
		PaymentTerm:   "installment",
		ExtraOption:   "complimentary",
		Lines: []LinePayload{
			{ServiceID: 1, Quantity: 0, UnitPrice: ""},     // quantity clamps, price falls back
			{ServiceID: 2, Quantity: 2, UnitPrice: "-7"},   // price clamps to 0
			{ServiceID: 3, Quantity: 1, UnitPrice: "90.5"}, // explicit override
		},
		Installments: []InstallmentPayload{
			{Percent: "60", DueDate: "2025-01-01"},
			{ID: "keep-me", Percent: "40"},
		},
	}
	d := DraftFromPayload(testCatalog(t), p)

	if d.ExtraOption != ExtraComplimentary || d.PaymentTerm != TermInstallment {
		t.Fatalf("options not carried: %+v", d)
	}
	if d.Lines[0].Quantity != 1 || d.Lines[0].UnitPrice != nil {
		t.Fatalf("line 0 rules not applied: %+v", d.Lines[0])
	}
	if !d.UnitPriceOf(d.Lines[1]).Equal(decimal.Zero) {
		t.Fatalf("negative price must clamp to 0")
	}
	if !d.UnitPriceOf(d.Lines[2]).Equal(dec(t, "90.5")) {
		t.Fatalf("override not applied: %s", d.UnitPriceOf(d.Lines[2]))
	}
	if d.Installments[0].ID == "" || d.Installments[1].ID != "keep-me" {
		t.Fatalf("installment ids wrong: %+v", d.Installments)
	}
	if !d.PlanComplete() {
		t.Fatalf("60+40 must be complete")
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("payload draft must validate, got %v", err)
	}
}
