package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type InspectionStatus string

const (
	InspectionDraft     InspectionStatus = "draft"
	InspectionCompleted InspectionStatus = "completed"
)

type InspectionResult string

const (
	ResultPending InspectionResult = ""
	ResultPass    InspectionResult = "pass"
	ResultFail    InspectionResult = "fail"
)

type Answer string

const (
	AnswerPass Answer = "pass"
	AnswerFail Answer = "fail"
	AnswerNA   Answer = "na"
)

var Answers = []Answer{AnswerPass, AnswerFail, AnswerNA}

// Wizard steps of a HARP inspection report.
const (
	StepFacility     = 1
	StepTube         = 2
	StepChecklist    = 3
	StepMeasurements = 4
	StepReview       = 5
)

// ChecklistAnswer records the verdict for one checklist item.
type ChecklistAnswer struct {
	Code    string `json:"code"`
	Answer  Answer `json:"answer"`
	Comment string `json:"comment"`
}

// Measurements are the physical test results taken on the unit.
type Measurements struct {
	KVpNominal           float64 `json:"kvpNominal"`
	KVpMeasured          float64 `json:"kvpMeasured"`
	ExposureTimeNominal  float64 `json:"exposureTimeNominal"`
	ExposureTimeMeasured float64 `json:"exposureTimeMeasured"`
	HalfValueLayerMM     float64 `json:"halfValueLayerMm"`
	EntranceExposureMR   float64 `json:"entranceExposureMR"`
}

// Recorded reports whether the mandatory readings are present.
func (m *Measurements) Recorded() bool {
	return m != nil && m.KVpNominal > 0 && m.KVpMeasured > 0 &&
		m.ExposureTimeNominal > 0 && m.ExposureTimeMeasured > 0 && m.HalfValueLayerMM > 0
}

// HarpInspection is a regulatory X-ray safety inspection report built up
// step by step.
type HarpInspection struct {
	Meta
	ClientID           uuid.UUID         `json:"clientId"`
	EquipmentID        uuid.UUID         `json:"equipmentId"`
	InspectorID        uuid.NullUUID     `json:"inspectorId"`
	Step               int               `json:"step"`
	Status             InspectionStatus  `json:"status"`
	Result             InspectionResult  `json:"result"`
	InspectionDate     time.Time         `json:"inspectionDate"`
	RegistrationNumber string            `json:"registrationNumber"`
	RoomLocation       string            `json:"roomLocation"`
	TubeManufacturer   string            `json:"tubeManufacturer"`
	TubeModel          string            `json:"tubeModel"`
	TubeSerial         string            `json:"tubeSerial"`
	ControlSerial      string            `json:"controlSerial"`
	Checklist          []ChecklistAnswer `json:"checklist"`
	Measurements       *Measurements     `json:"measurements"`
	CorrectiveAction   string            `json:"correctiveAction"`
	NextInspectionDue  *time.Time        `json:"nextInspectionDue"`
	SignedBy           string            `json:"signedBy"`
	CompletedAt        *time.Time        `json:"completedAt"`
}

func (h *HarpInspection) Validate() error {
	ve := &validation.Errors{}
	validation.RequiredID(ve, "clientId", h.ClientID)
	validation.RequiredID(ve, "equipmentId", h.EquipmentID)
	validation.Range(ve, "step", h.Step, StepFacility, StepReview)
	for _, a := range h.Checklist {
		validation.Required(ve, "checklist.code", a.Code)
		validation.Enum(ve, "checklist.answer", a.Answer, Answers)
	}
	return ve.Err()
}

func (h *HarpInspection) Defaults() {
	if h.Step == 0 {
		h.Step = StepFacility
	}
	if h.Status == "" {
		h.Status = InspectionDraft
	}
}

// Completed reports whether the report is signed off.
func (h *HarpInspection) Completed() bool {
	return h.Status == InspectionCompleted
}

// Answer returns the recorded answer for code.
func (h *HarpInspection) Answer(code string) (ChecklistAnswer, bool) {
	for _, a := range h.Checklist {
		if a.Code == code {
			return a, true
		}
	}
	return ChecklistAnswer{}, false
}

// FailedItems returns the answers marked fail.
func (h *HarpInspection) FailedItems() []ChecklistAnswer {
	var out []ChecklistAnswer
	for _, a := range h.Checklist {
		if a.Answer == AnswerFail {
			out = append(out, a)
		}
	}
	return out
}
