package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type InvoiceStore struct {
	*Table[domain.Invoice, *domain.Invoice]
}

func NewInvoiceStore(db *sql.DB) *InvoiceStore {
	return &InvoiceStore{NewTable[domain.Invoice](db, Schema[domain.Invoice]{
		Table: domain.CollectionInvoices,
		Columns: []string{
			"number", "client_id", "repair_id", "status", "issue_date", "due_date",
			"line_items", "subtotal", "tax_rate", "tax", "total", "paid_at", "notes",
		},
		Values: func(inv *domain.Invoice) []any {
			return []any{
				inv.Number, inv.ClientID, inv.RepairID, inv.Status, timeValue(inv.IssueDate),
				timeValue(inv.DueDate), asJSON(&inv.LineItems), inv.Subtotal, inv.TaxRate,
				inv.Tax, inv.Total, nullTimeValue(inv.PaidAt), inv.Notes,
			}
		},
		Fields: func(inv *domain.Invoice) []any {
			return []any{
				&inv.Number, &inv.ClientID, &inv.RepairID, &inv.Status, utcTime{&inv.IssueDate},
				utcTime{&inv.DueDate}, asJSON(&inv.LineItems), &inv.Subtotal, &inv.TaxRate,
				&inv.Tax, &inv.Total, nullTime{&inv.PaidAt}, &inv.Notes,
			}
		},
		Filters: map[string]Filter{
			"clientId": {Column: "client_id", Kind: FilterID},
			"repairId": {Column: "repair_id", Kind: FilterID},
			"status":   {Column: "status"},
			"number":   {Column: "number"},
		},
		Search:     []string{"number", "notes"},
		DateColumn: "issue_date",
		Sorts: map[string]string{
			"number":    "number",
			"issueDate": "issue_date",
			"dueDate":   "due_date",
			"status":    "status",
			"paidAt":    "paid_at",
		},
		DefaultSort: "issue_date",
		DefaultDesc: true,
	})}
}

// ListOpen returns invoices still awaiting payment, oldest due date first.
func (s *InvoiceStore) ListOpen(ctx context.Context) ([]*domain.Invoice, error) {
	return s.query(ctx, s.selectAll().
		Where(sq.Eq{"status": []domain.InvoiceStatus{domain.InvoiceSent, domain.InvoiceOverdue}}).
		OrderBy("due_date ASC", "id"))
}
