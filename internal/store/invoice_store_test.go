package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/domain"
)

func TestInvoiceStoreListOpen(t *testing.T) {
	d := openTestDB(t)
	invoices := NewInvoiceStore(d)
	ctx := context.Background()
	c := createClient(t, d, "Clinic")

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []domain.InvoiceStatus{domain.InvoiceDraft, domain.InvoiceSent, domain.InvoiceOverdue, domain.InvoicePaid} {
		inv := &domain.Invoice{
			Number:    "INV-0000" + string(rune('1'+i)),
			ClientID:  c.ID,
			Status:    status,
			IssueDate: issued,
			DueDate:   issued.AddDate(0, 0, 30-i),
			LineItems: []domain.LineItem{{Description: "Service call", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("120.00")}},
		}
		inv.ComputeTotals()
		require.NoError(t, invoices.Create(ctx, inv))
	}

	open, err := invoices.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, domain.InvoiceOverdue, open[0].Status)
	assert.True(t, open[0].Total.Equal(decimal.RequireFromString("120")))
	require.Len(t, open[0].LineItems, 1)
	assert.Equal(t, "Service call", open[0].LineItems[0].Description)
}
