package invoicing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the label of the payment channel selected on an invoice.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentOnline       PaymentMethod = "Online Payment"
	PaymentBankTransfer PaymentMethod = "Bank transfer"
	PaymentInsurance    PaymentMethod = "Insurance"
)

// PaymentMethods is the fixed set accepted on submission.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentOnline, PaymentBankTransfer, PaymentInsurance}

// ValidPaymentMethod reports whether m is one of the known labels.
func ValidPaymentMethod(m PaymentMethod) bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// PaymentTerm selects between a single full payment and an installment plan.
type PaymentTerm string

const (
	TermFull        PaymentTerm = "full"
	TermInstallment PaymentTerm = "installment"
)

// ExtraOption flags invoices outside normal revenue accounting.
type ExtraOption string

const (
	ExtraNone          ExtraOption = ""
	ExtraComplimentary ExtraOption = "complimentary"
)

// LineItem is one priced row of a draft. A nil UnitPrice means "no manual
// override": the charged price falls back to the catalog base price at
// total-computation time, so clearing an override restores the default.
type LineItem struct {
	ServiceID              uint
	Quantity               int
	UnitPrice              *decimal.Decimal
	SourceGroupID          *uint
	AppliedDiscountPercent *decimal.Decimal
}

// Draft is the invoice under construction for one editing session. All
// operations are synchronous mutations of in-memory state; nothing is
// persisted until the caller validates and submits the whole draft.
type Draft struct {
	catalog       *Catalog
	PaymentMethod PaymentMethod
	PaymentTerm   PaymentTerm
	ExtraOption   ExtraOption
	Lines         []LineItem
	Installments  []Installment
}

// NewDraft starts an empty draft priced against the given catalog snapshot.
func NewDraft(catalog *Catalog) *Draft {
	return &Draft{catalog: catalog, PaymentTerm: TermFull}
}

var hundred = decimal.NewFromInt(100)

// clampPercent restricts a discount or allocation percent to [0, 100].
func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// AddService appends one line for an individually selected service.
// Unknown service ids are skipped. Duplicate ids stay independent lines.
func (d *Draft) AddService(serviceID uint) {
	if _, ok := d.catalog.Service(serviceID); !ok {
		return
	}
	d.Lines = append(d.Lines, LineItem{ServiceID: serviceID, Quantity: 1})
}

// AddGroup expands a group into one line per resolvable member service,
// appended as a single batch. Links whose service no longer exists are
// skipped. Discount resolution order: link override when positive, else
// the group blanket when positive, else none; the resolved percent is
// clamped to [0, 100] and the discounted price floored at zero.
func (d *Draft) AddGroup(groupID uint) {
	group, ok := d.catalog.Group(groupID)
	if !ok {
		return
	}
	var batch []LineItem
	for _, link := range d.catalog.LinksFor(groupID) {
		svc, ok := d.catalog.Service(link.ServiceID)
		if !ok {
			continue
		}
		discount := resolveDiscount(link.DiscountOverride, group.DiscountPercent)
		price := svc.BasePrice
		if discount != nil {
			price = svc.BasePrice.Mul(hundred.Sub(*discount)).Div(hundred)
			if price.IsNegative() {
				price = decimal.Zero
			}
		}
		gid := groupID
		batch = append(batch, LineItem{
			ServiceID:              link.ServiceID,
			Quantity:               1,
			UnitPrice:              &price,
			SourceGroupID:          &gid,
			AppliedDiscountPercent: discount,
		})
	}
	d.Lines = append(d.Lines, batch...)
}

// resolveDiscount picks the effective discount for a group member, or nil
// when neither the override nor the blanket applies.
func resolveDiscount(override, blanket *decimal.Decimal) *decimal.Decimal {
	if override != nil && override.IsPositive() {
		p := clampPercent(*override)
		return &p
	}
	if blanket != nil && blanket.IsPositive() {
		p := clampPercent(*blanket)
		return &p
	}
	return nil
}

// SetUnitPrice applies a manual price override from a raw form value. An
// empty or unparseable value clears the override back to the catalog
// default; negative values clamp to zero.
func (d *Draft) SetUnitPrice(index int, raw string) {
	if index < 0 || index >= len(d.Lines) {
		return
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Lines[index].UnitPrice = nil
		return
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		d.Lines[index].UnitPrice = nil
		return
	}
	if p.IsNegative() {
		p = decimal.Zero
	}
	d.Lines[index].UnitPrice = &p
}

// SetQuantity parses a raw quantity; anything non-numeric or below one
// clamps to one.
func (d *Draft) SetQuantity(index int, raw string) {
	if index < 0 || index >= len(d.Lines) {
		return
	}
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q < 1 {
		q = 1
	}
	d.Lines[index].Quantity = q
}

// RemoveLine deletes one line, keeping the order of the remainder stable.
func (d *Draft) RemoveLine(index int) {
	if index < 0 || index >= len(d.Lines) {
		return
	}
	d.Lines = append(d.Lines[:index], d.Lines[index+1:]...)
}

// UnitPriceOf resolves the charged unit price of a line: the manual
// override when present, else the catalog base price, else zero for a
// service missing from the catalog.
func (d *Draft) UnitPriceOf(li LineItem) decimal.Decimal {
	if li.UnitPrice != nil {
		return *li.UnitPrice
	}
	if svc, ok := d.catalog.Service(li.ServiceID); ok {
		return svc.BasePrice
	}
	return decimal.Zero
}

// LineTotal is unit price times quantity for one line.
func (d *Draft) LineTotal(li LineItem) decimal.Decimal {
	qty := li.Quantity
	if qty < 1 {
		qty = 1
	}
	return d.UnitPriceOf(li).Mul(decimal.NewFromInt(int64(qty)))
}

// Total sums line totals over lines that reference a service. Lines with
// an empty service id are ignored, matching the validation rule.
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range d.Lines {
		if li.ServiceID == 0 {
			continue
		}
		total = total.Add(d.LineTotal(li))
	}
	return total
}
