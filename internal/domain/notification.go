package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type NotificationType string

const (
	NotifyInfo           NotificationType = "info"
	NotifyLowStock       NotificationType = "low_stock"
	NotifyInvoiceOverdue NotificationType = "invoice_overdue"
	NotifyServiceDue     NotificationType = "service_due"
	NotifyInspectionDue  NotificationType = "inspection_due"
	NotifySchedule       NotificationType = "schedule"
)

var NotificationTypes = []NotificationType{
	NotifyInfo, NotifyLowStock, NotifyInvoiceOverdue, NotifyServiceDue, NotifyInspectionDue, NotifySchedule,
}

// Notification is an in-app message. A null UserID addresses every user.
type Notification struct {
	Meta
	UserID  uuid.NullUUID    `json:"userId"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Link    string           `json:"link"`
	Read    bool             `json:"read"`
	ReadAt  *time.Time       `json:"readAt"`
}

func (n *Notification) Validate() error {
	ve := &validation.Errors{}
	validation.Required(ve, "title", n.Title)
	validation.Enum(ve, "type", n.Type, NotificationTypes)
	return ve.Err()
}

func (n *Notification) Defaults() {
	if n.Type == "" {
		n.Type = NotifyInfo
	}
}
