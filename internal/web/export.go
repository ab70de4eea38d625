package web

import (
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/report"
)

// exporter lays a collection out as spreadsheet rows.
type exporter[T any] struct {
	headers []string
	row     func(*T) []string
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func dayPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return day(*t)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func nullID(id uuid.NullUUID) string {
	if !id.Valid {
		return ""
	}
	return id.UUID.String()
}

var clientExport = exporter[domain.Client]{
	headers: []string{"ID", "Name", "Contact", "Email", "Phone", "Address", "City", "State", "Postal Code", "Account", "Status", "Notes"},
	row: func(c *domain.Client) []string {
		return []string{c.ID.String(), c.Name, c.ContactName, c.Email, c.Phone, c.Address,
			c.City, c.State, c.PostalCode, c.AccountNumber, string(c.Status), c.Notes}
	},
}

var equipmentExport = exporter[domain.Equipment]{
	headers: []string{"ID", "Client ID", "Type", "Manufacturer", "Model", "Serial", "Location", "Installed",
		"Warranty Expires", "Status", "Last Service", "Next Service Due", "Interval (days)"},
	row: func(e *domain.Equipment) []string {
		return []string{e.ID.String(), e.ClientID.String(), string(e.Type), e.Manufacturer, e.Model,
			e.SerialNumber, e.Location, dayPtr(e.InstallDate), dayPtr(e.WarrantyExpires), string(e.Status),
			dayPtr(e.LastServiceDate), dayPtr(e.NextServiceDue), strconv.Itoa(e.ServiceIntervalDays)}
	},
}

var repairExport = exporter[domain.Repair]{
	headers: []string{"ID", "Equipment ID", "Client ID", "Technician ID", "Status", "Priority", "Problem",
		"Diagnosis", "Work Performed", "Parts Used", "Labor Hours", "Labor Rate", "Reported", "Completed"},
	row: func(r *domain.Repair) []string {
		completed := ""
		if r.CompletedAt != nil {
			completed = stamp(*r.CompletedAt)
		}
		return []string{r.ID.String(), r.EquipmentID.String(), r.ClientID.String(), nullID(r.TechnicianID),
			string(r.Status), string(r.Priority), r.Problem, r.Diagnosis, r.WorkPerformed,
			strconv.Itoa(len(r.PartsUsed)), report.Quantity(r.LaborHours), report.Money(r.LaborRate),
			stamp(r.ReportedAt), completed}
	},
}

var invoiceExport = exporter[domain.Invoice]{
	headers: []string{"Number", "Client ID", "Repair ID", "Status", "Issued", "Due", "Subtotal", "Tax", "Total", "Paid"},
	row: func(i *domain.Invoice) []string {
		return []string{i.Number, i.ClientID.String(), nullID(i.RepairID), string(i.Status), day(i.IssueDate),
			day(i.DueDate), report.Money(i.Subtotal), report.Money(i.Tax), report.Money(i.Total), dayPtr(i.PaidAt)}
	},
}

var inspectionExport = exporter[domain.HarpInspection]{
	headers: []string{"ID", "Client ID", "Equipment ID", "Inspector ID", "Date", "Status", "Result",
		"Registration", "Room", "Tube Serial", "Next Due", "Signed By"},
	row: func(h *domain.HarpInspection) []string {
		return []string{h.ID.String(), h.ClientID.String(), h.EquipmentID.String(), nullID(h.InspectorID),
			day(h.InspectionDate), string(h.Status), string(h.Result), h.RegistrationNumber, h.RoomLocation,
			h.TubeSerial, dayPtr(h.NextInspectionDue), h.SignedBy}
	},
}

var partExport = exporter[domain.Part]{
	headers: []string{"Part Number", "Name", "Manufacturer", "Category", "Unit Cost", "Unit Price", "On Hand",
		"Reorder At", "Reorder Qty", "On Order", "Location", "Supplier"},
	row: func(p *domain.Part) []string {
		return []string{p.PartNumber, p.Name, p.Manufacturer, p.Category, report.Money(p.UnitCost),
			report.Money(p.UnitPrice), strconv.Itoa(p.QuantityOnHand), strconv.Itoa(p.ReorderThreshold),
			strconv.Itoa(p.ReorderQuantity), strconv.Itoa(p.QuantityOnOrder), p.Location, p.Supplier}
	},
}

var scheduleExport = exporter[domain.Schedule]{
	headers: []string{"ID", "Title", "Type", "Status", "Start", "End", "Client ID", "Equipment ID", "Repair ID", "Technician ID", "Notes"},
	row: func(s *domain.Schedule) []string {
		return []string{s.ID.String(), s.Title, string(s.Type), string(s.Status), stamp(s.StartAt), stamp(s.EndAt),
			nullID(s.ClientID), nullID(s.EquipmentID), nullID(s.RepairID), nullID(s.TechnicianID), s.Notes}
	},
}

var manualExport = exporter[domain.Manual]{
	headers: []string{"ID", "Title", "Manufacturer", "Model", "Equipment Type", "URL", "File Type", "Notes"},
	row: func(m *domain.Manual) []string {
		return []string{m.ID.String(), m.Title, m.Manufacturer, m.Model, string(m.EquipmentType), m.URL, m.MimeType, m.Notes}
	},
}

var notificationExport = exporter[domain.Notification]{
	headers: []string{"ID", "User ID", "Type", "Title", "Message", "Link", "Read", "Created"},
	row: func(n *domain.Notification) []string {
		return []string{n.ID.String(), nullID(n.UserID), string(n.Type), n.Title, n.Message, n.Link,
			strconv.FormatBool(n.Read), stamp(n.CreatedAt)}
	},
}

var userExport = exporter[domain.User]{
	headers: []string{"ID", "Email", "Name", "Role", "Phone", "Active", "Last Login"},
	row: func(u *domain.User) []string {
		last := ""
		if u.LastLoginAt != nil {
			last = stamp(*u.LastLoginAt)
		}
		return []string{u.ID.String(), u.Email, u.Name, string(u.Role), u.Phone, strconv.FormatBool(u.Active), last}
	},
}
