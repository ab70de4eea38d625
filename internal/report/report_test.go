package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/harp"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", Money(decimal.Zero))
	assert.Equal(t, "$1,234.50", Money(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$12.35", Money(decimal.RequireFromString("12.345")))
	assert.Equal(t, "-$40.00", Money(decimal.NewFromInt(-40)))
}

func TestInvoicePDF(t *testing.T) {
	paid := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	inv := &domain.Invoice{
		Number:    "INV-00042",
		ClientID:  uuid.Must(uuid.NewV4()),
		Status:    domain.InvoicePaid,
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		PaidAt:    &paid,
		LineItems: []domain.LineItem{
			{Description: "Labor: replaced handpiece turbine", Quantity: decimal.NewFromFloat(1.5), UnitPrice: decimal.NewFromInt(95)},
			{Description: "T-100 Turbine cartridge", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("219.99")},
		},
		TaxRate: decimal.RequireFromString("0.13"),
		Notes:   "Thank you – net 30.",
	}
	inv.ComputeTotals()

	var buf bytes.Buffer
	err := InvoicePDF(&buf, InvoiceReport{
		Company: "Northside Dental Service",
		Invoice: inv,
		Client:  &domain.Client{Name: "Maple Dental", City: "Guelph", State: "ON", PostalCode: "N1H 1A1"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestInspectionPDF(t *testing.T) {
	checklist, err := harp.LoadChecklist()
	require.NoError(t, err)

	now := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	m := &domain.Measurements{
		KVpNominal: 70, KVpMeasured: 68,
		ExposureTimeNominal: 100, ExposureTimeMeasured: 140,
		HalfValueLayerMM: 2.0,
	}
	h := &domain.HarpInspection{
		Status:             domain.InspectionCompleted,
		Result:             domain.ResultFail,
		InspectionDate:     now,
		RegistrationNumber: "HARP-1187",
		TubeManufacturer:   "Planmeca",
		Checklist: []domain.ChecklistAnswer{
			{Code: "DOC-01", Answer: domain.AnswerPass},
			{Code: "FAC-01", Answer: domain.AnswerFail, Comment: "Warning sign missing at door."},
			{Code: "IMG-01", Answer: domain.AnswerNA},
		},
		Measurements:     m,
		CorrectiveAction: "Post warning sign and recalibrate timer.",
		SignedBy:         "J. Inspector",
		CompletedAt:      &now,
	}

	var buf bytes.Buffer
	err = InspectionPDF(&buf, InspectionReport{
		Company:    "Northside Dental Service",
		Inspection: h,
		Client:     &domain.Client{Name: "Maple Dental"},
		Equipment:  &domain.Equipment{Manufacturer: "Planmeca", Model: "ProX", SerialNumber: "PX-1"},
		Checklist:  checklist,
		Checks:     harp.Evaluate(m),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestInspectionPDFWithoutMeasurements(t *testing.T) {
	var buf bytes.Buffer
	err := InspectionPDF(&buf, InspectionReport{
		Company:    "Northside Dental Service",
		Inspection: &domain.HarpInspection{Status: domain.InspectionDraft},
	})
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"Number", "Client", "Total"}
	rows := [][]string{
		{"INV-00001", "Maple Dental", "$120.00"},
		{"INV-00002", "Birch Orthodontics", "$45.10"},
	}
	require.NoError(t, WriteXLSX(&buf, "Invoices", headers, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Invoices"}, f.GetSheetList())
	got, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Equal(t, append([][]string{headers}, rows...), got)
}

func TestWriteXLSXDefaultSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "", []string{"A"}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}
