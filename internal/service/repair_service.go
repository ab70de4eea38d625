package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/validation"
)

// stockAdjuster is the subset of store.PartStore used to consume parts.
type stockAdjuster interface {
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Part, error)
}

// repairRepository adds the conditional status change Complete relies on.
type repairRepository interface {
	repository[domain.Repair]
	SetStatus(ctx context.Context, id uuid.UUID, from, to domain.RepairStatus) error
}

type RepairService struct {
	*Resource[domain.Repair, *domain.Repair]
	repairs   repairRepository
	equipment *EquipmentService
	users     getter[domain.User]
	stock     stockAdjuster
	parts     *PartService
}

func NewRepairService(
	store repairRepository,
	equipment *EquipmentService,
	users getter[domain.User],
	parts *PartService,
	pub events.Publisher,
	logger *slog.Logger,
) *RepairService {
	s := &RepairService{
		Resource:  NewResource[domain.Repair](store, pub, logger),
		repairs:   store,
		equipment: equipment,
		users:     users,
		stock:     parts.store,
		parts:     parts,
	}
	s.check = s.checkRefs
	s.preserve = func(_ context.Context, stored, incoming *domain.Repair) error {
		if stored.Status == domain.RepairCompleted {
			return conflict("repair %s is completed", stored.ID)
		}
		if incoming.Status == domain.RepairCompleted {
			return validation.Invalid("status", "use the complete action to finish a repair")
		}
		// Stock is only consumed on completion.
		incoming.CompletedAt = nil
		if incoming.ReportedAt.IsZero() {
			incoming.ReportedAt = stored.ReportedAt
		}
		return nil
	}
	return s
}

func (s *RepairService) checkRefs(ctx context.Context, r *domain.Repair) error {
	eq, err := mustExist(ctx, getter[domain.Equipment](s.equipment), "equipmentId", r.EquipmentID)
	if err != nil {
		return err
	}
	if eq.ClientID != r.ClientID {
		return validation.Invalid("equipmentId", "does not belong to the client")
	}
	if r.TechnicianID.Valid {
		if _, err := mustExist(ctx, s.users, "technicianId", r.TechnicianID.UUID); err != nil {
			return err
		}
	}
	return nil
}

// Create opens a repair. New repairs start pending and are stamped with the
// time they were reported unless one is given.
func (s *RepairService) Create(ctx context.Context, r *domain.Repair) (*domain.Repair, error) {
	if r.Status == domain.RepairCompleted {
		return nil, validation.Invalid("status", "use the complete action to finish a repair")
	}
	if r.ReportedAt.IsZero() {
		r.ReportedAt = s.now().UTC()
	}
	r.CompletedAt = nil
	return s.Resource.Create(ctx, r)
}

// CompleteRepair carries the technician's close-out of a repair. Nil fields
// keep the values already on the repair.
type CompleteRepair struct {
	Diagnosis     string             `json:"diagnosis"`
	WorkPerformed string             `json:"workPerformed"`
	PartsUsed     []domain.PartUsage `json:"partsUsed"`
	LaborHours    *decimal.Decimal   `json:"laborHours"`
	LaborRate     *decimal.Decimal   `json:"laborRate"`
	CompletedAt   *time.Time         `json:"completedAt"`
}

// Complete closes a repair: parts used are taken out of stock, the repair is
// marked completed and the equipment's service dates are rolled forward. If
// any part cannot be consumed, parts already taken are put back and nothing
// is saved. The status is claimed before stock moves, so of two concurrent
// completions only one consumes parts.
func (s *RepairService) Complete(ctx context.Context, id uuid.UUID, in CompleteRepair) (*domain.Repair, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch r.Status {
	case domain.RepairCompleted:
		return nil, conflict("repair %s is already completed", id)
	case domain.RepairCancelled:
		return nil, conflict("repair %s is cancelled", id)
	}

	if in.Diagnosis != "" {
		r.Diagnosis = in.Diagnosis
	}
	if in.WorkPerformed != "" {
		r.WorkPerformed = in.WorkPerformed
	}
	if in.PartsUsed != nil {
		r.PartsUsed = in.PartsUsed
	}
	if in.LaborHours != nil {
		r.LaborHours = *in.LaborHours
	}
	if in.LaborRate != nil {
		r.LaborRate = *in.LaborRate
	}
	completedAt := s.now().UTC()
	if in.CompletedAt != nil {
		completedAt = in.CompletedAt.UTC()
	}
	open := r.Status
	r.Status = domain.RepairCompleted
	r.CompletedAt = &completedAt

	ve := &validation.Errors{}
	validation.Required(ve, "workPerformed", r.WorkPerformed)
	if err := ve.Err(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := s.repairs.SetStatus(ctx, id, open, domain.RepairCompleted); err != nil {
		return nil, err
	}
	consumed, err := s.consumeParts(ctx, r)
	if err != nil {
		s.reopen(ctx, id, open)
		return nil, err
	}
	if _, err := s.save(ctx, r); err != nil {
		s.restoreParts(ctx, consumed)
		s.reopen(ctx, id, open)
		return nil, err
	}

	if err := s.recordService(ctx, r.EquipmentID, completedAt); err != nil {
		// The repair itself is closed; a stale service date is recoverable.
		s.logger.ErrorContext(ctx, "failed to roll equipment service dates",
			"repair_id", r.ID, "equipment_id", r.EquipmentID, "error", err)
	}
	return r, nil
}

// consumeParts takes each used part out of stock and fills in unit prices not
// set on the repair. On failure every part already taken is restored.
func (s *RepairService) consumeParts(ctx context.Context, r *domain.Repair) ([]domain.PartUsage, error) {
	consumed := make([]domain.PartUsage, 0, len(r.PartsUsed))
	for i, use := range r.PartsUsed {
		part, err := s.stock.AdjustStock(ctx, use.PartID, -use.Quantity)
		if err != nil {
			s.restoreParts(ctx, consumed)
			return nil, fmt.Errorf("failed to consume part %s: %w", use.PartID, err)
		}
		consumed = append(consumed, use)
		if use.UnitPrice.IsZero() {
			r.PartsUsed[i].UnitPrice = part.UnitPrice
		}
		s.parts.publish(ctx, events.ActionUpdate, part.ID, part)
	}
	return consumed, nil
}

// reopen hands a claimed repair back to its previous status.
func (s *RepairService) reopen(ctx context.Context, id uuid.UUID, status domain.RepairStatus) {
	if err := s.repairs.SetStatus(ctx, id, domain.RepairCompleted, status); err != nil {
		s.logger.ErrorContext(ctx, "failed to reopen repair", "repair_id", id, "status", status, "error", err)
	}
}

func (s *RepairService) restoreParts(ctx context.Context, consumed []domain.PartUsage) {
	for _, use := range consumed {
		part, err := s.stock.AdjustStock(ctx, use.PartID, use.Quantity)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to restore part stock",
				"part_id", use.PartID, "quantity", use.Quantity, "error", err)
			continue
		}
		s.parts.publish(ctx, events.ActionUpdate, part.ID, part)
	}
}

func (s *RepairService) recordService(ctx context.Context, equipmentID uuid.UUID, at time.Time) error {
	eq, err := s.equipment.Get(ctx, equipmentID)
	if err != nil {
		return err
	}
	eq.RecordService(at)
	_, err = s.equipment.save(ctx, eq)
	return err
}

// Cost is labor plus parts for r.
func (s *RepairService) Cost(r *domain.Repair) decimal.Decimal {
	return r.Cost()
}
