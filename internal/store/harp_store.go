package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type HarpStore struct {
	*Table[domain.HarpInspection, *domain.HarpInspection]
}

func NewHarpStore(db *sql.DB) *HarpStore {
	return &HarpStore{NewTable[domain.HarpInspection](db, Schema[domain.HarpInspection]{
		Table: domain.CollectionHarpInspections,
		Columns: []string{
			"client_id", "equipment_id", "inspector_id", "step", "status", "result",
			"inspection_date", "registration_number", "room_location", "tube_manufacturer",
			"tube_model", "tube_serial", "control_serial", "checklist", "measurements",
			"corrective_action", "next_inspection_due", "signed_by", "completed_at",
		},
		Values: func(h *domain.HarpInspection) []any {
			return []any{
				h.ClientID, h.EquipmentID, h.InspectorID, h.Step, h.Status, h.Result,
				timeValue(h.InspectionDate), h.RegistrationNumber, h.RoomLocation, h.TubeManufacturer,
				h.TubeModel, h.TubeSerial, h.ControlSerial, asJSON(&h.Checklist), asJSON(&h.Measurements),
				h.CorrectiveAction, nullTimeValue(h.NextInspectionDue), h.SignedBy, nullTimeValue(h.CompletedAt),
			}
		},
		Fields: func(h *domain.HarpInspection) []any {
			return []any{
				&h.ClientID, &h.EquipmentID, &h.InspectorID, &h.Step, &h.Status, &h.Result,
				utcTime{&h.InspectionDate}, &h.RegistrationNumber, &h.RoomLocation, &h.TubeManufacturer,
				&h.TubeModel, &h.TubeSerial, &h.ControlSerial, asJSON(&h.Checklist), asJSON(&h.Measurements),
				&h.CorrectiveAction, nullTime{&h.NextInspectionDue}, &h.SignedBy, nullTime{&h.CompletedAt},
			}
		},
		Filters: map[string]Filter{
			"clientId":    {Column: "client_id", Kind: FilterID},
			"equipmentId": {Column: "equipment_id", Kind: FilterID},
			"inspectorId": {Column: "inspector_id", Kind: FilterID},
			"status":      {Column: "status"},
			"result":      {Column: "result"},
		},
		Search:     []string{"registration_number", "room_location", "tube_serial", "signed_by"},
		DateColumn: "inspection_date",
		Sorts: map[string]string{
			"inspectionDate":    "inspection_date",
			"nextInspectionDue": "next_inspection_due",
			"status":            "status",
			"result":            "result",
		},
		DefaultSort: "inspection_date",
		DefaultDesc: true,
	})}
}

// DueBefore returns the latest completed inspection of each unit whose next
// inspection falls on or before the given time.
func (s *HarpStore) DueBefore(ctx context.Context, before time.Time) ([]*domain.HarpInspection, error) {
	return s.query(ctx, s.selectAll().
		Where(sq.Eq{"status": domain.InspectionCompleted}).
		Where(sq.NotEq{"next_inspection_due": nil}).
		Where(sq.LtOrEq{"next_inspection_due": timeValue(before)}).
		Where(`NOT EXISTS (
			SELECT 1 FROM harp_inspections later
			WHERE later.equipment_id = harp_inspections.equipment_id
			  AND later.status = 'completed'
			  AND later.inspection_date > harp_inspections.inspection_date)`).
		OrderBy("next_inspection_due ASC", "id"))
}
