package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type InvoiceReport struct {
	Company string
	Invoice *domain.Invoice
	Client  *domain.Client
}

// newDocument returns a Letter portrait page set up with the shared header
// and page-number footer, plus a translator from UTF-8 to the core fonts'
// code page.
func newDocument(company, title string) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(company, true)
	pdf.SetCreator("fieldtech", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(company), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, tr(title), "", 1, "R", false, 0, "")
		pdf.SetDrawColor(160, 160, 160)
		y := pdf.GetY()
		pdf.Line(15, y, 200.9, y)
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return pdf, tr
}

func addressLines(c *domain.Client) []string {
	lines := []string{c.Name}
	if c.ContactName != "" {
		lines = append(lines, "Attn: "+c.ContactName)
	}
	if c.Address != "" {
		lines = append(lines, c.Address)
	}
	cityLine := strings.TrimSpace(strings.Join(nonEmpty(c.City, c.State), ", ") + " " + c.PostalCode)
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	return lines
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// InvoicePDF writes a printable invoice: billing address, dates, line items
// and the stored totals.
func InvoicePDF(w io.Writer, r InvoiceReport) error {
	inv := r.Invoice
	pdf, tr := newDocument(r.Company, "Invoice "+inv.Number)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(110, 6, "Bill to", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Invoice", "", 1, "L", false, 0, "")

	left := addressLines(r.Client)
	right := []string{
		"Number: " + inv.Number,
		"Issued: " + date(inv.IssueDate),
		"Due: " + date(inv.DueDate),
		"Status: " + strings.ToUpper(string(inv.Status)),
	}
	if inv.PaidAt != nil {
		right = append(right, "Paid: "+datePtr(inv.PaidAt))
	}
	pdf.SetFont("Helvetica", "", 10)
	for i := 0; i < max(len(left), len(right)); i++ {
		var l, rt string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			rt = right[i]
		}
		pdf.CellFormat(110, 5, tr(l), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(rt), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	widths := []float64{100, 20, 30, 35.9}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Description", "Qty", "Unit price", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range inv.LineItems {
		pdf.CellFormat(widths[0], 6, tr(l.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, Quantity(l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, Money(l.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, Money(l.Amount()), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	labelW := widths[0] + widths[1] + widths[2]
	totals := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", Money(inv.Subtotal), false},
		{fmt.Sprintf("Tax (%s%%)", inv.TaxRate.Mul(hundred).StringFixed(2)), Money(inv.Tax), false},
		{"Total", Money(inv.Total), true},
	}
	for _, t := range totals {
		style := ""
		if t.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, t.value, "", 1, "R", false, 0, "")
	}

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return nil
}
