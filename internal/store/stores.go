package store

import "database/sql"

// Stores bundles one store per table.
type Stores struct {
	Clients       *ClientStore
	Equipment     *EquipmentStore
	Repairs       *RepairStore
	Invoices      *InvoiceStore
	Inspections   *HarpStore
	Parts         *PartStore
	Schedules     *ScheduleStore
	Manuals       *ManualStore
	Notifications *NotificationStore
	Photos        *PhotoStore
	Users         *UserStore
	Counters      *CounterStore
}

func New(db *sql.DB) *Stores {
	return &Stores{
		Clients:       NewClientStore(db),
		Equipment:     NewEquipmentStore(db),
		Repairs:       NewRepairStore(db),
		Invoices:      NewInvoiceStore(db),
		Inspections:   NewHarpStore(db),
		Parts:         NewPartStore(db),
		Schedules:     NewScheduleStore(db),
		Manuals:       NewManualStore(db),
		Notifications: NewNotificationStore(db),
		Photos:        NewPhotoStore(db),
		Users:         NewUserStore(db),
		Counters:      NewCounterStore(db),
	}
}
