package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type RepairStatus string

const (
	RepairPending    RepairStatus = "pending"
	RepairScheduled  RepairStatus = "scheduled"
	RepairInProgress RepairStatus = "in_progress"
	RepairCompleted  RepairStatus = "completed"
	RepairCancelled  RepairStatus = "cancelled"
)

var RepairStatuses = []RepairStatus{RepairPending, RepairScheduled, RepairInProgress, RepairCompleted, RepairCancelled}

// Open reports whether work is still outstanding.
func (s RepairStatus) Open() bool {
	return s == RepairPending || s == RepairScheduled || s == RepairInProgress
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// PartUsage is a part consumed by a repair.
type PartUsage struct {
	PartID    uuid.UUID       `json:"partId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Repair is a maintenance or repair event against a piece of equipment.
type Repair struct {
	Meta
	EquipmentID   uuid.UUID       `json:"equipmentId"`
	ClientID      uuid.UUID       `json:"clientId"`
	TechnicianID  uuid.NullUUID   `json:"technicianId"`
	Status        RepairStatus    `json:"status"`
	Priority      Priority        `json:"priority"`
	Problem       string          `json:"problem"`
	Diagnosis     string          `json:"diagnosis"`
	WorkPerformed string          `json:"workPerformed"`
	PartsUsed     []PartUsage     `json:"partsUsed"`
	LaborHours    decimal.Decimal `json:"laborHours"`
	LaborRate     decimal.Decimal `json:"laborRate"`
	ReportedAt    time.Time       `json:"reportedAt"`
	CompletedAt   *time.Time      `json:"completedAt"`
}

func (r *Repair) Validate() error {
	ve := &validation.Errors{}
	validation.RequiredID(ve, "equipmentId", r.EquipmentID)
	validation.RequiredID(ve, "clientId", r.ClientID)
	validation.Required(ve, "problem", r.Problem)
	validation.Enum(ve, "status", r.Status, RepairStatuses)
	validation.Enum(ve, "priority", r.Priority, Priorities)
	validation.DecimalNonNegative(ve, "laborHours", r.LaborHours)
	validation.DecimalNonNegative(ve, "laborRate", r.LaborRate)
	for _, p := range r.PartsUsed {
		validation.RequiredID(ve, "partsUsed.partId", p.PartID)
		validation.Positive(ve, "partsUsed.quantity", p.Quantity)
		validation.DecimalNonNegative(ve, "partsUsed.unitPrice", p.UnitPrice)
	}
	return ve.Err()
}

func (r *Repair) Defaults() {
	if r.Status == "" {
		r.Status = RepairPending
	}
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}
}

// LaborCost is hours times rate.
func (r *Repair) LaborCost() decimal.Decimal {
	return r.LaborHours.Mul(r.LaborRate)
}

// PartsCost is the sum of quantity times unit price over parts used.
func (r *Repair) PartsCost() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.PartsUsed {
		total = total.Add(p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// Cost is labor plus parts.
func (r *Repair) Cost() decimal.Decimal {
	return r.LaborCost().Add(r.PartsCost())
}
