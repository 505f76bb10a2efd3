package invoicing

import "errors"

// Validation failures. All are recoverable by further user input and are
// surfaced to the client as a single translated message; none is fatal.
var (
	ErrMissingPaymentMethod = errors.New("missing_payment_method")
	ErrNoLineItems          = errors.New("no_line_items")
	ErrNoInstallments       = errors.New("no_installments")
	ErrIncompleteAllocation = errors.New("incomplete_allocation")
)

// Validate gates submission. Checks run in a fixed order and the first
// failure is returned: payment method present, at least one line with a
// service, and — for installment terms — at least one positive entry
// summing to exactly 100%.
func (d *Draft) Validate() error {
	if d.PaymentMethod == "" {
		return ErrMissingPaymentMethod
	}
	hasLine := false
	for _, li := range d.Lines {
		if li.ServiceID != 0 {
			hasLine = true
			break
		}
	}
	if !hasLine {
		return ErrNoLineItems
	}
	if d.PaymentTerm == TermInstallment {
		positive := 0
		for _, ins := range d.Installments {
			if ins.Percent.IsPositive() {
				positive++
			}
		}
		if positive == 0 {
			return ErrNoInstallments
		}
		if !d.PlanComplete() {
			return ErrIncompleteAllocation
		}
	}
	return nil
}
