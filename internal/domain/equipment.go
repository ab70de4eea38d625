package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type EquipmentType string

const (
	EquipmentXRay       EquipmentType = "xray"
	EquipmentPanoramic  EquipmentType = "panoramic"
	EquipmentCBCT       EquipmentType = "cbct"
	EquipmentChair      EquipmentType = "chair"
	EquipmentCompressor EquipmentType = "compressor"
	EquipmentVacuum     EquipmentType = "vacuum"
	EquipmentSterilizer EquipmentType = "sterilizer"
	EquipmentHandpiece  EquipmentType = "handpiece"
	EquipmentLight      EquipmentType = "light"
	EquipmentOther      EquipmentType = "other"
)

var EquipmentTypes = []EquipmentType{
	EquipmentXRay, EquipmentPanoramic, EquipmentCBCT, EquipmentChair, EquipmentCompressor,
	EquipmentVacuum, EquipmentSterilizer, EquipmentHandpiece, EquipmentLight, EquipmentOther,
}

// IsRadiographic reports whether the type falls under HARP inspection.
func (t EquipmentType) IsRadiographic() bool {
	return t == EquipmentXRay || t == EquipmentPanoramic || t == EquipmentCBCT
}

type EquipmentStatus string

const (
	EquipmentActive       EquipmentStatus = "active"
	EquipmentInRepair     EquipmentStatus = "in_repair"
	EquipmentOutOfService EquipmentStatus = "out_of_service"
	EquipmentRetired      EquipmentStatus = "retired"
)

var EquipmentStatuses = []EquipmentStatus{EquipmentActive, EquipmentInRepair, EquipmentOutOfService, EquipmentRetired}

// Equipment is a device installed at a client site.
type Equipment struct {
	Meta
	ClientID            uuid.UUID       `json:"clientId"`
	Type                EquipmentType   `json:"type"`
	Manufacturer        string          `json:"manufacturer"`
	Model               string          `json:"model"`
	SerialNumber        string          `json:"serialNumber"`
	Location            string          `json:"location"`
	InstallDate         *time.Time      `json:"installDate"`
	WarrantyExpires     *time.Time      `json:"warrantyExpires"`
	Status              EquipmentStatus `json:"status"`
	LastServiceDate     *time.Time      `json:"lastServiceDate"`
	NextServiceDue      *time.Time      `json:"nextServiceDue"`
	ServiceIntervalDays int             `json:"serviceIntervalDays"`
	Notes               string          `json:"notes"`
}

func (e *Equipment) Validate() error {
	ve := &validation.Errors{}
	validation.RequiredID(ve, "clientId", e.ClientID)
	validation.Required(ve, "type", string(e.Type))
	validation.Enum(ve, "type", e.Type, EquipmentTypes)
	validation.Enum(ve, "status", e.Status, EquipmentStatuses)
	validation.NonNegative(ve, "serviceIntervalDays", e.ServiceIntervalDays)
	return ve.Err()
}

func (e *Equipment) Defaults() {
	if e.Status == "" {
		e.Status = EquipmentActive
	}
}

// UnderWarranty reports whether the warranty covers at.
func (e *Equipment) UnderWarranty(at time.Time) bool {
	return e.WarrantyExpires != nil && !at.After(*e.WarrantyExpires)
}

// RecordService stamps a completed service visit and rolls the next due date.
func (e *Equipment) RecordService(at time.Time) {
	day := Date(at)
	e.LastServiceDate = &day
	if e.ServiceIntervalDays > 0 {
		next := day.AddDate(0, 0, e.ServiceIntervalDays)
		e.NextServiceDue = &next
	}
	if e.Status == EquipmentInRepair || e.Status == EquipmentOutOfService {
		e.Status = EquipmentActive
	}
}
