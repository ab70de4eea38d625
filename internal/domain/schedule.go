package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type ScheduleType string

const (
	ScheduleService      ScheduleType = "service"
	ScheduleRepair       ScheduleType = "repair"
	ScheduleInspection   ScheduleType = "inspection"
	ScheduleInstallation ScheduleType = "installation"
	ScheduleDelivery     ScheduleType = "delivery"
	ScheduleOther        ScheduleType = "other"
)

var ScheduleTypes = []ScheduleType{
	ScheduleService, ScheduleRepair, ScheduleInspection, ScheduleInstallation, ScheduleDelivery, ScheduleOther,
}

type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleConfirmed ScheduleStatus = "confirmed"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

var ScheduleStatuses = []ScheduleStatus{ScheduleScheduled, ScheduleConfirmed, ScheduleCompleted, ScheduleCancelled}

// Schedule is a technician appointment.
type Schedule struct {
	Meta
	Title        string         `json:"title"`
	ClientID     uuid.NullUUID  `json:"clientId"`
	EquipmentID  uuid.NullUUID  `json:"equipmentId"`
	RepairID     uuid.NullUUID  `json:"repairId"`
	TechnicianID uuid.NullUUID  `json:"technicianId"`
	Type         ScheduleType   `json:"type"`
	Status       ScheduleStatus `json:"status"`
	StartAt      time.Time      `json:"startAt"`
	EndAt        time.Time      `json:"endAt"`
	Notes        string         `json:"notes"`
}

func (s *Schedule) Validate() error {
	ve := &validation.Errors{}
	validation.Required(ve, "title", s.Title)
	validation.Enum(ve, "type", s.Type, ScheduleTypes)
	validation.Enum(ve, "status", s.Status, ScheduleStatuses)
	validation.RequiredTime(ve, "startAt", s.StartAt)
	validation.RequiredTime(ve, "endAt", s.EndAt)
	validation.After(ve, "endAt", s.StartAt, s.EndAt)
	return ve.Err()
}

func (s *Schedule) Defaults() {
	if s.Type == "" {
		s.Type = ScheduleService
	}
	if s.Status == "" {
		s.Status = ScheduleScheduled
	}
}

// Active reports whether the slot still blocks the technician's calendar.
func (s *Schedule) Active() bool {
	return s.Status != ScheduleCancelled
}
