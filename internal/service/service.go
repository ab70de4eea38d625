// Package service holds the business rules of each collection on top of the
// stores: validation, referential checks, state transitions and change
// events.
package service

import (
	"log/slog"

	"github.com/vbonduro/fieldtech/internal/config"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/harp"
	"github.com/vbonduro/fieldtech/internal/mailer"
	"github.com/vbonduro/fieldtech/internal/photostore"
	"github.com/vbonduro/fieldtech/internal/store"
	"github.com/vbonduro/fieldtech/internal/vision"
)

// Deps are the collaborators every service is built from.
type Deps struct {
	Stores    *store.Stores
	Blobs     photostore.Store
	Vision    vision.Analyzer
	Mailer    mailer.Mailer
	Events    events.Publisher
	Tokens    tokenIssuer
	Checklist *harp.Checklist
	Billing   config.Billing
	Logger    *slog.Logger
}

type Services struct {
	Clients       *Resource[domain.Client, *domain.Client]
	Equipment     *EquipmentService
	Repairs       *RepairService
	Invoices      *InvoiceService
	Inspections   *HarpService
	Parts         *PartService
	Schedules     *ScheduleService
	Manuals       *ManualService
	Notifications *NotificationService
	Photos        *PhotoService
	Users         *UserService
	Dashboard     *DashboardService
	Reminders     *ReminderService
}

func New(d Deps) *Services {
	st := d.Stores
	log := d.Logger.With("component", "service")

	s := &Services{}
	s.Clients = NewResource[domain.Client](st.Clients, d.Events, log)
	s.Users = NewUserService(st.Users, d.Tokens, d.Events, log)
	s.Notifications = NewNotificationService(st.Notifications, st.Users, d.Mailer, d.Events, log)
	s.Parts = NewPartService(st.Parts, s.Notifications, d.Events, log)
	s.Equipment = NewEquipmentService(st.Equipment, st.Clients, d.Vision, d.Events, log)
	s.Repairs = NewRepairService(st.Repairs, s.Equipment, st.Users, s.Parts, d.Events, log)
	s.Invoices = NewInvoiceService(st.Invoices, st.Counters, st.Clients, st.Repairs, st.Parts,
		s.Notifications, d.Billing, d.Events, log)
	s.Inspections = NewHarpService(st.Inspections, st.Clients, st.Equipment, st.Users,
		d.Checklist, d.Billing.CompanyName, d.Events, log)
	s.Schedules = NewScheduleService(st.Schedules, st.Users, st.Clients, s.Notifications, d.Events, log)
	s.Manuals = NewManualService(st.Manuals, d.Blobs, d.Events, log)
	s.Photos = NewPhotoService(st.Photos, d.Blobs, Owners{
		Clients:     st.Clients,
		Equipment:   st.Equipment,
		Repairs:     st.Repairs,
		Inspections: st.Inspections,
	}, d.Events, log)
	s.Dashboard = NewDashboardService(DashboardSources{
		Clients:     st.Clients,
		Equipment:   st.Equipment,
		Repairs:     st.Repairs,
		Invoices:    st.Invoices,
		Parts:       st.Parts,
		Schedules:   st.Schedules,
		Inspections: st.Inspections,
	})
	s.Reminders = NewReminderService(s.Equipment, s.Inspections, st.Clients, s.Notifications, log)
	return s
}
