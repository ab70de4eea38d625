package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoid    InvoiceStatus = "void"
)

var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceVoid}

// LineItem is one billed line.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	PartID      uuid.NullUUID   `json:"partId"`
}

// Amount is quantity times unit price.
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Invoice is a billing record. Subtotal, Tax and Total are computed when the
// invoice is created and only change through an explicit recalculation.
type Invoice struct {
	Meta
	Number    string          `json:"number"`
	ClientID  uuid.UUID       `json:"clientId"`
	RepairID  uuid.NullUUID   `json:"repairId"`
	Status    InvoiceStatus   `json:"status"`
	IssueDate time.Time       `json:"issueDate"`
	DueDate   time.Time       `json:"dueDate"`
	LineItems []LineItem      `json:"lineItems"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	PaidAt    *time.Time      `json:"paidAt"`
	Notes     string          `json:"notes"`
}

func (inv *Invoice) Validate() error {
	ve := &validation.Errors{}
	validation.RequiredID(ve, "clientId", inv.ClientID)
	validation.Enum(ve, "status", inv.Status, InvoiceStatuses)
	validation.DecimalRange(ve, "taxRate", inv.TaxRate, decimal.Zero, decimal.NewFromInt(1))
	if !inv.IssueDate.IsZero() && !inv.DueDate.IsZero() && inv.DueDate.Before(inv.IssueDate) {
		ve.Add("dueDate", "must not be before issue date")
	}
	for _, l := range inv.LineItems {
		validation.Required(ve, "lineItems.description", l.Description)
		if !l.Quantity.IsPositive() {
			ve.Add("lineItems.quantity", "must be positive")
		}
		validation.DecimalNonNegative(ve, "lineItems.unitPrice", l.UnitPrice)
	}
	return ve.Err()
}

// ComputeTotals sets subtotal, tax (rounded to cents) and total from the
// current line items and tax rate.
func (inv *Invoice) ComputeTotals() {
	subtotal := decimal.Zero
	for _, l := range inv.LineItems {
		subtotal = subtotal.Add(l.Amount())
	}
	inv.Subtotal = subtotal.Round(2)
	inv.Tax = inv.Subtotal.Mul(inv.TaxRate).Round(2)
	inv.Total = inv.Subtotal.Add(inv.Tax)
}

// Outstanding reports whether payment is still expected.
func (inv *Invoice) Outstanding() bool {
	return inv.Status == InvoiceSent || inv.Status == InvoiceOverdue
}

// IsOverdue reports whether the invoice is unpaid past its due date at now.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == InvoiceOverdue {
		return true
	}
	return inv.Status == InvoiceSent && Date(now).After(Date(inv.DueDate))
}
