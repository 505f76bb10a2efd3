package invoicing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment is one percentage-based entry of a payment plan. List order
// is display order and assumed payment order; due dates are stored as
// given and never validated chronologically.
type Installment struct {
	ID      string
	Percent decimal.Decimal
	DueDate string
}

// AddInstallment appends a zero-percent entry with a fresh id and returns
// a pointer to it.
func (d *Draft) AddInstallment() *Installment {
	d.Installments = append(d.Installments, Installment{ID: uuid.NewString()})
	return &d.Installments[len(d.Installments)-1]
}

func (d *Draft) installmentIndex(id string) int {
	for i := range d.Installments {
		if d.Installments[i].ID == id {
			return i
		}
	}
	return -1
}

// SetInstallmentPercent parses a raw percent value; empty or unparseable
// input becomes zero, everything else clamps to [0, 100]. The stored value
// is otherwise kept unrounded — only the allocation sum is rounded. No
// cross-entry renormalization happens; balancing to 100% is on the caller.
func (d *Draft) SetInstallmentPercent(id, raw string) {
	i := d.installmentIndex(id)
	if i < 0 {
		return
	}
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		p = decimal.Zero
	}
	d.Installments[i].Percent = clampPercent(p)
}

// SetInstallmentDueDate stores the raw date as-is.
func (d *Draft) SetInstallmentDueDate(id, raw string) {
	if i := d.installmentIndex(id); i >= 0 {
		d.Installments[i].DueDate = raw
	}
}

// RemoveInstallment deletes the entry with the given id.
func (d *Draft) RemoveInstallment(id string) {
	i := d.installmentIndex(id)
	if i < 0 {
		return
	}
	d.Installments = append(d.Installments[:i], d.Installments[i+1:]...)
}

// AllocationTotal sums the percents of entries above zero, rounded to two
// decimals. Rounding happens on the sum, not per entry: [33.33, 33.33,
// 33.34] totals exactly 100.00 while [33.33, 33.33, 33.33] stays at 99.99.
// Load-bearing for which plans are accepted — keep sum-then-round.
func (d *Draft) AllocationTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, ins := range d.Installments {
		if ins.Percent.IsPositive() {
			sum = sum.Add(ins.Percent)
		}
	}
	return sum.Round(2)
}

// PlanComplete reports whether the allocation total equals exactly 100.00.
// 99.99 and 100.01 are both incomplete.
func (d *Draft) PlanComplete() bool {
	return d.AllocationTotal().Equal(hundred)
}

// InstallmentAmount derives the monetary share of one entry from the
// current draft total. Display-only; never itself validated.
func (d *Draft) InstallmentAmount(ins Installment) decimal.Decimal {
	return d.Total().Mul(clampPercent(ins.Percent)).Div(hundred)
}
