package invoicing

import "github.com/shopspring/decimal"

// Bucket is the single revenue bucket an invoice contributes to.
type Bucket string

const (
	BucketPaid          Bucket = "paid"
	BucketUnpaid        Bucket = "unpaid"
	BucketComplimentary Bucket = "complimentary"
)

// Classify maps an invoice state to its bucket. Complimentary wins over
// payment status so an invoice never lands in more than one bucket.
func Classify(s State) Bucket {
	if s.Complimentary {
		return BucketComplimentary
	}
	if s.Status == StatusPaid {
		return BucketPaid
	}
	return BucketUnpaid
}

// RevenueSummary accumulates invoice totals into the buckets consumed by
// the summary screens. Gross counts every invoice; each invoice also adds
// its full amount to exactly one of paid, unpaid or complimentary.
type RevenueSummary struct {
	Gross         decimal.Decimal
	Paid          decimal.Decimal
	Unpaid        decimal.Decimal
	Complimentary decimal.Decimal
}

// Add books one invoice into the summary.
func (r *RevenueSummary) Add(s State, total decimal.Decimal) {
	r.Gross = r.Gross.Add(total)
	switch Classify(s) {
	case BucketComplimentary:
		r.Complimentary = r.Complimentary.Add(total)
	case BucketPaid:
		r.Paid = r.Paid.Add(total)
	default:
		r.Unpaid = r.Unpaid.Add(total)
	}
}

// LineSummary is a rendering-ready view of one draft line.
type LineSummary struct {
	ServiceID              uint             `json:"service_id"`
	ServiceName            string           `json:"service_name"`
	Quantity               int              `json:"quantity"`
	UnitPrice              decimal.Decimal  `json:"unit_price"`
	LineTotal              decimal.Decimal  `json:"line_total"`
	SourceGroupID          *uint            `json:"source_group_id,omitempty"`
	AppliedDiscountPercent *decimal.Decimal `json:"applied_discount_percent,omitempty"`
}

// InstallmentSummary is a rendering-ready view of one plan entry.
type InstallmentSummary struct {
	ID      string          `json:"id"`
	Percent decimal.Decimal `json:"percent"`
	DueDate string          `json:"due_date,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

// DraftSummary carries every derived display field of a draft. It is
// recomputed on each edit rather than cached, so it is never stale.
type DraftSummary struct {
	Lines           []LineSummary        `json:"lines"`
	Total           decimal.Decimal      `json:"total"`
	Installments    []InstallmentSummary `json:"installments"`
	AllocationTotal decimal.Decimal      `json:"allocation_total"`
	PlanComplete    bool                 `json:"plan_complete"`
}

// Summarize computes the full display view of the draft.
func (d *Draft) Summarize() DraftSummary {
	s := DraftSummary{
		Lines:           make([]LineSummary, 0, len(d.Lines)),
		Total:           d.Total(),
		Installments:    make([]InstallmentSummary, 0, len(d.Installments)),
		AllocationTotal: d.AllocationTotal(),
		PlanComplete:    d.PlanComplete(),
	}
	for _, li := range d.Lines {
		ls := LineSummary{
			ServiceID:              li.ServiceID,
			Quantity:               li.Quantity,
			UnitPrice:              d.UnitPriceOf(li),
			LineTotal:              d.LineTotal(li),
			SourceGroupID:          li.SourceGroupID,
			AppliedDiscountPercent: li.AppliedDiscountPercent,
		}
		if svc, ok := d.catalog.Service(li.ServiceID); ok {
			ls.ServiceName = svc.Name
		}
		s.Lines = append(s.Lines, ls)
	}
	for _, ins := range d.Installments {
		s.Installments = append(s.Installments, InstallmentSummary{
			ID:      ins.ID,
			Percent: ins.Percent,
			DueDate: ins.DueDate,
			Amount:  d.InstallmentAmount(ins),
		})
	}
	return s
}
