package invoicing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LinePayload is one line item as sent by the clinic SPA. UnitPrice comes
// as a string so "" can mean "no override"; quantity below one clamps.
type LinePayload struct {
	ServiceID              uint             `json:"service_id"`
	Quantity               int              `json:"quantity"`
	UnitPrice              string           `json:"unit_price"`
	SourceGroupID          *uint            `json:"source_group_id,omitempty"`
	AppliedDiscountPercent *decimal.Decimal `json:"applied_discount_percent,omitempty"`
}

// InstallmentPayload is one plan entry as sent by the client.
type InstallmentPayload struct {
	ID      string `json:"id,omitempty"`
	Percent string `json:"percent"`
	DueDate string `json:"due_date,omitempty"`
}

// DraftPayload is the wire shape of a complete draft.
type DraftPayload struct {
	PaymentMethod string               `json:"payment_method"`
	PaymentTerm   string               `json:"payment_term"`
	ExtraOption   string               `json:"extra_option,omitempty"`
	Lines         []LinePayload        `json:"line_items"`
	Installments  []InstallmentPayload `json:"installments"`
}

// DraftFromPayload rebuilds a draft from its wire shape, applying the same
// clamping and fallback rules as the interactive edit operations. Lines
// keep their client ordering; entries without an id get a fresh one.
func DraftFromPayload(catalog *Catalog, p DraftPayload) *Draft {
	d := NewDraft(catalog)
	d.PaymentMethod = PaymentMethod(p.PaymentMethod)
	d.PaymentTerm = PaymentTerm(p.PaymentTerm)
	if d.PaymentTerm != TermInstallment {
		d.PaymentTerm = TermFull
	}
	if ExtraOption(p.ExtraOption) == ExtraComplimentary {
		d.ExtraOption = ExtraComplimentary
	}
	for _, lp := range p.Lines {
		li := LineItem{
			ServiceID:     lp.ServiceID,
			Quantity:      lp.Quantity,
			SourceGroupID: lp.SourceGroupID,
		}
		if li.Quantity < 1 {
			li.Quantity = 1
		}
		if lp.UnitPrice != "" {
			if price, err := decimal.NewFromString(lp.UnitPrice); err == nil {
				if price.IsNegative() {
					price = decimal.Zero
				}
				li.UnitPrice = &price
			}
		}
		if lp.AppliedDiscountPercent != nil {
			disc := clampPercent(*lp.AppliedDiscountPercent)
			li.AppliedDiscountPercent = &disc
		}
		d.Lines = append(d.Lines, li)
	}
	for _, ip := range p.Installments {
		ins := Installment{ID: ip.ID, DueDate: ip.DueDate}
		if ins.ID == "" {
			ins.ID = uuid.NewString()
		}
		if pct, err := decimal.NewFromString(ip.Percent); err == nil {
			ins.Percent = clampPercent(pct)
		}
		d.Installments = append(d.Installments, ins)
	}
	return d
}
