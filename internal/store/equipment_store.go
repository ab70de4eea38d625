package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type EquipmentStore struct {
	*Table[domain.Equipment, *domain.Equipment]
}

func NewEquipmentStore(db *sql.DB) *EquipmentStore {
	return &EquipmentStore{NewTable[domain.Equipment](db, Schema[domain.Equipment]{
		Table: domain.CollectionEquipment,
		Columns: []string{
			"client_id", "type", "manufacturer", "model", "serial_number", "location",
			"install_date", "warranty_expires", "status", "last_service_date",
			"next_service_due", "service_interval_days", "notes",
		},
		Values: func(e *domain.Equipment) []any {
			return []any{
				e.ClientID, e.Type, e.Manufacturer, e.Model, e.SerialNumber, e.Location,
				nullTimeValue(e.InstallDate), nullTimeValue(e.WarrantyExpires), e.Status,
				nullTimeValue(e.LastServiceDate), nullTimeValue(e.NextServiceDue),
				e.ServiceIntervalDays, e.Notes,
			}
		},
		Fields: func(e *domain.Equipment) []any {
			return []any{
				&e.ClientID, &e.Type, &e.Manufacturer, &e.Model, &e.SerialNumber, &e.Location,
				nullTime{&e.InstallDate}, nullTime{&e.WarrantyExpires}, &e.Status,
				nullTime{&e.LastServiceDate}, nullTime{&e.NextServiceDue},
				&e.ServiceIntervalDays, &e.Notes,
			}
		},
		Filters: map[string]Filter{
			"clientId":     {Column: "client_id", Kind: FilterID},
			"type":         {Column: "type"},
			"status":       {Column: "status"},
			"manufacturer": {Column: "manufacturer"},
			"serialNumber": {Column: "serial_number"},
		},
		Search:     []string{"manufacturer", "model", "serial_number", "location"},
		DateColumn: "next_service_due",
		Sorts: map[string]string{
			"manufacturer":    "manufacturer",
			"model":           "model",
			"type":            "type",
			"status":          "status",
			"nextServiceDue":  "next_service_due",
			"lastServiceDate": "last_service_date",
		},
		DefaultSort: "manufacturer",
	})}
}

// DueForService returns non-retired equipment whose next service is due on or
// before the given time, soonest first.
func (s *EquipmentStore) DueForService(ctx context.Context, before time.Time) ([]*domain.Equipment, error) {
	return s.query(ctx, s.selectAll().
		Where(sq.NotEq{"next_service_due": nil}).
		Where(sq.LtOrEq{"next_service_due": timeValue(before)}).
		Where(sq.NotEq{"status": domain.EquipmentRetired}).
		OrderBy("next_service_due ASC", "id"))
}
