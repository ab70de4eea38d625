package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type RepairStore struct {
	*Table[domain.Repair, *domain.Repair]
}

func NewRepairStore(db *sql.DB) *RepairStore {
	return &RepairStore{NewTable[domain.Repair](db, Schema[domain.Repair]{
		Table: domain.CollectionRepairs,
		Columns: []string{
			"equipment_id", "client_id", "technician_id", "status", "priority", "problem",
			"diagnosis", "work_performed", "parts_used", "labor_hours", "labor_rate",
			"reported_at", "completed_at",
		},
		Values: func(r *domain.Repair) []any {
			return []any{
				r.EquipmentID, r.ClientID, r.TechnicianID, r.Status, r.Priority, r.Problem,
				r.Diagnosis, r.WorkPerformed, asJSON(&r.PartsUsed), r.LaborHours, r.LaborRate,
				timeValue(r.ReportedAt), nullTimeValue(r.CompletedAt),
			}
		},
		Fields: func(r *domain.Repair) []any {
			return []any{
				&r.EquipmentID, &r.ClientID, &r.TechnicianID, &r.Status, &r.Priority, &r.Problem,
				&r.Diagnosis, &r.WorkPerformed, asJSON(&r.PartsUsed), &r.LaborHours, &r.LaborRate,
				utcTime{&r.ReportedAt}, nullTime{&r.CompletedAt},
			}
		},
		Filters: map[string]Filter{
			"equipmentId":  {Column: "equipment_id", Kind: FilterID},
			"clientId":     {Column: "client_id", Kind: FilterID},
			"technicianId": {Column: "technician_id", Kind: FilterID},
			"status":       {Column: "status"},
			"priority":     {Column: "priority"},
		},
		Search:     []string{"problem", "diagnosis", "work_performed"},
		DateColumn: "reported_at",
		Sorts: map[string]string{
			"reportedAt":  "reported_at",
			"completedAt": "completed_at",
			"status":      "status",
			"priority":    "priority",
		},
		DefaultSort: "reported_at",
		DefaultDesc: true,
	})}
}

// SetStatus moves a repair from one status to another in a single statement.
// It fails with domain.ErrConflict when the stored status is no longer from.
func (s *RepairStore) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.RepairStatus) error {
	query, args, err := sq.Update(s.Name()).
		Set("status", to).
		Set("updated_at", timeValue(s.now())).
		Where(sq.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status update: %w", err)
	}
	err = s.execOne(ctx, "update repair status", query, args...)
	if errors.Is(err, domain.ErrNotFound) {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("repair %s is no longer %s: %w", id, from, domain.ErrConflict)
	}
	return err
}
