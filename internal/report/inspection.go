package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/harp"
)

type InspectionReport struct {
	Company    string
	Inspection *domain.HarpInspection
	Client     *domain.Client
	Equipment  *domain.Equipment
	Checklist  *harp.Checklist
	Checks     []harp.Check
}

// InspectionPDF writes the signed HARP inspection report.
func InspectionPDF(w io.Writer, r InspectionReport) error {
	h := r.Inspection
	pdf, tr := newDocument(r.Company, "HARP X-ray Inspection Report")

	heading := func(s string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 7, tr(s), "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 5.5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5.5, tr(value), "", "L", false)
	}

	heading("Facility")
	if r.Client != nil {
		field("Facility", strings.Join(addressLines(r.Client), "\n"))
	}
	field("Registration number", h.RegistrationNumber)
	field("Room", h.RoomLocation)
	field("Inspection date", date(h.InspectionDate))

	heading("X-ray unit")
	if r.Equipment != nil {
		field("Unit", strings.TrimSpace(r.Equipment.Manufacturer+" "+r.Equipment.Model))
		field("Unit serial", r.Equipment.SerialNumber)
	}
	field("Tube", strings.TrimSpace(h.TubeManufacturer+" "+h.TubeModel))
	field("Tube serial", h.TubeSerial)
	field("Control serial", h.ControlSerial)

	if r.Checklist != nil {
		for _, sec := range r.Checklist.Sections {
			heading(sec.Title)
			for _, item := range sec.Items {
				checklistRow(pdf, tr, h, item)
			}
		}
	}

	heading("Measurements")
	if len(r.Checks) == 0 {
		pdf.CellFormat(0, 6, "No measurements recorded.", "", 1, "L", false, 0, "")
	} else {
		widths := []float64{55, 65, 35, 30.9}
		pdf.SetFont("Helvetica", "B", 10)
		for i, c := range []string{"Test", "Expected", "Measured", "Result"} {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, c := range r.Checks {
			pdf.CellFormat(widths[0], 6, tr(c.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, tr(c.Expected), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", c.Measured), "1", 0, "L", false, 0, "")
			verdict(pdf, widths[3], c.Pass)
		}
		if m := h.Measurements; m != nil && m.EntranceExposureMR > 0 {
			pdf.Ln(1)
			field("Entrance exposure", fmt.Sprintf("%.2f mR", m.EntranceExposureMR))
		}
	}

	heading("Result")
	result := "PENDING"
	if h.Result != domain.ResultPending {
		result = strings.ToUpper(string(h.Result))
	}
	field("Overall result", result)
	if h.CorrectiveAction != "" {
		field("Corrective action", h.CorrectiveAction)
	}
	field("Next inspection due", datePtr(h.NextInspectionDue))

	pdf.Ln(10)
	y := pdf.GetY()
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(15, y+8, 95, y+8)
	pdf.SetY(y + 9)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(80, 5, tr("Inspector: "+h.SignedBy), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Completed: "+datePtr(h.CompletedAt), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render inspection pdf: %w", err)
	}
	return nil
}

func checklistRow(pdf *fpdf.Fpdf, tr func(string) string, h *domain.HarpInspection, item harp.Item) {
	a, ok := h.Answer(item.Code)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(18, 5.5, item.Code, "B", 0, "L", false, 0, "")
	pdf.CellFormat(140, 5.5, tr(item.Text), "B", 0, "L", false, 0, "")
	switch {
	case !ok:
		pdf.CellFormat(0, 5.5, "-", "B", 1, "C", false, 0, "")
	case a.Answer == domain.AnswerNA:
		pdf.CellFormat(0, 5.5, "N/A", "B", 1, "C", false, 0, "")
	default:
		verdict(pdf, 0, a.Answer == domain.AnswerPass)
	}
	if ok && a.Comment != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetX(33)
		pdf.MultiCell(0, 4.5, tr(a.Comment), "", "L", false)
	}
}

func verdict(pdf *fpdf.Fpdf, w float64, pass bool) {
	label := "PASS"
	if pass {
		pdf.SetTextColor(0, 110, 0)
	} else {
		label = "FAIL"
		pdf.SetTextColor(180, 0, 0)
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(w, 5.5, label, "B", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
}
