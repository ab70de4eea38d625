package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type ScheduleStore struct {
	*Table[domain.Schedule, *domain.Schedule]
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{NewTable[domain.Schedule](db, Schema[domain.Schedule]{
		Table: domain.CollectionSchedules,
		Columns: []string{
			"title", "client_id", "equipment_id", "repair_id", "technician_id", "type",
			"status", "start_at", "end_at", "notes",
		},
		Values: func(s *domain.Schedule) []any {
			return []any{
				s.Title, s.ClientID, s.EquipmentID, s.RepairID, s.TechnicianID, s.Type,
				s.Status, timeValue(s.StartAt), timeValue(s.EndAt), s.Notes,
			}
		},
		Fields: func(s *domain.Schedule) []any {
			return []any{
				&s.Title, &s.ClientID, &s.EquipmentID, &s.RepairID, &s.TechnicianID, &s.Type,
				&s.Status, utcTime{&s.StartAt}, utcTime{&s.EndAt}, &s.Notes,
			}
		},
		Filters: map[string]Filter{
			"clientId":     {Column: "client_id", Kind: FilterID},
			"equipmentId":  {Column: "equipment_id", Kind: FilterID},
			"repairId":     {Column: "repair_id", Kind: FilterID},
			"technicianId": {Column: "technician_id", Kind: FilterID},
			"type":         {Column: "type"},
			"status":       {Column: "status"},
		},
		Search:      []string{"title", "notes"},
		DateColumn:  "start_at",
		Sorts:       map[string]string{"startAt": "start_at", "endAt": "end_at", "title": "title"},
		DefaultSort: "start_at",
	})}
}

// Overlapping returns the technician's active appointments that intersect
// [start, end), ignoring exclude.
func (s *ScheduleStore) Overlapping(ctx context.Context, technicianID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*domain.Schedule, error) {
	return s.query(ctx, s.selectAll().
		Where(sq.Eq{"technician_id": technicianID}).
		Where(sq.NotEq{"status": domain.ScheduleCancelled}).
		Where(sq.NotEq{"id": exclude}).
		Where(sq.Lt{"start_at": timeValue(end)}).
		Where(sq.Gt{"end_at": timeValue(start)}).
		OrderBy("start_at ASC", "id"))
}

// Range returns appointments intersecting [from, to), optionally limited to
// one technician.
func (s *ScheduleStore) Range(ctx context.Context, from, to time.Time, technicianID uuid.NullUUID) ([]*domain.Schedule, error) {
	b := s.selectAll().
		Where(sq.Lt{"start_at": timeValue(to)}).
		Where(sq.Gt{"end_at": timeValue(from)})
	if technicianID.Valid {
		b = b.Where(sq.Eq{"technician_id": technicianID.UUID})
	}
	return s.query(ctx, b.OrderBy("start_at ASC", "id"))
}
