package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/harp"
	"github.com/vbonduro/fieldtech/internal/report"
	"github.com/vbonduro/fieldtech/internal/validation"
)

type harpRepository interface {
	repository[domain.HarpInspection]
	DueBefore(ctx context.Context, before time.Time) ([]*domain.HarpInspection, error)
}

type HarpService struct {
	*Resource[domain.HarpInspection, *domain.HarpInspection]
	store     harpRepository
	clients   getter[domain.Client]
	equipment getter[domain.Equipment]
	users     getter[domain.User]
	checklist *harp.Checklist
	company   string
}

func NewHarpService(
	store harpRepository,
	clients getter[domain.Client],
	equipment getter[domain.Equipment],
	users getter[domain.User],
	checklist *harp.Checklist,
	company string,
	pub events.Publisher,
	logger *slog.Logger,
) *HarpService {
	s := &HarpService{
		Resource:  NewResource[domain.HarpInspection](store, pub, logger),
		store:     store,
		clients:   clients,
		equipment: equipment,
		users:     users,
		checklist: checklist,
		company:   company,
	}
	s.check = func(ctx context.Context, h *domain.HarpInspection) error {
		_, err := s.checkFacility(ctx, h)
		return err
	}
	// A plain update edits the facility and tube details only. Checklist,
	// measurements and sign-off change through SaveStep.
	s.preserve = func(_ context.Context, stored, incoming *domain.HarpInspection) error {
		if stored.Completed() {
			return conflict("inspection %s is completed", stored.ID)
		}
		incoming.Status = stored.Status
		incoming.Result = stored.Result
		incoming.Step = stored.Step
		incoming.CompletedAt = nil
		incoming.Checklist = stored.Checklist
		incoming.Measurements = stored.Measurements
		incoming.SignedBy = stored.SignedBy
		incoming.CorrectiveAction = stored.CorrectiveAction
		incoming.NextInspectionDue = stored.NextInspectionDue
		return nil
	}
	return s
}

// Checklist returns the inspection checklist template.
func (s *HarpService) Checklist() *harp.Checklist {
	return s.checklist
}

// StartInspection opens a draft report for a radiographic unit.
type StartInspection struct {
	ClientID       uuid.UUID     `json:"clientId"`
	EquipmentID    uuid.UUID     `json:"equipmentId"`
	InspectorID    uuid.NullUUID `json:"inspectorId"`
	InspectionDate time.Time     `json:"inspectionDate"`
}

// Start creates a draft at the first wizard step. Tube details are prefilled
// from the equipment record.
func (s *HarpService) Start(ctx context.Context, in StartInspection) (*domain.HarpInspection, error) {
	h := &domain.HarpInspection{
		ClientID:       in.ClientID,
		EquipmentID:    in.EquipmentID,
		InspectorID:    in.InspectorID,
		InspectionDate: in.InspectionDate,
		Step:           domain.StepFacility,
		Status:         domain.InspectionDraft,
	}
	if h.InspectionDate.IsZero() {
		h.InspectionDate = domain.Date(s.now())
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	eq, err := s.checkFacility(ctx, h)
	if err != nil {
		return nil, err
	}
	h.TubeManufacturer = eq.Manufacturer
	h.TubeModel = eq.Model
	h.TubeSerial = eq.SerialNumber
	h.RoomLocation = eq.Location

	return s.insert(ctx, h)
}

func (s *HarpService) checkFacility(ctx context.Context, h *domain.HarpInspection) (*domain.Equipment, error) {
	if _, err := mustExist(ctx, s.clients, "clientId", h.ClientID); err != nil {
		return nil, err
	}
	eq, err := mustExist(ctx, s.equipment, "equipmentId", h.EquipmentID)
	if err != nil {
		return nil, err
	}
	ve := &validation.Errors{}
	if eq.ClientID != h.ClientID {
		ve.Add("equipmentId", "does not belong to the client")
	}
	if !eq.Type.IsRadiographic() {
		ve.Add("equipmentId", "is not an X-ray unit")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	if h.InspectorID.Valid {
		if _, err := mustExist(ctx, s.users, "inspectorId", h.InspectorID.UUID); err != nil {
			return nil, err
		}
	}
	return eq, nil
}

// StepInput carries the fields of one wizard step. Only the fields belonging
// to the step being saved are read.
type StepInput struct {
	// Step 1: facility.
	ClientID           uuid.UUID     `json:"clientId"`
	EquipmentID        uuid.UUID     `json:"equipmentId"`
	InspectorID        uuid.NullUUID `json:"inspectorId"`
	InspectionDate     time.Time     `json:"inspectionDate"`
	RegistrationNumber string        `json:"registrationNumber"`
	RoomLocation       string        `json:"roomLocation"`

	// Step 2: tube and generator.
	TubeManufacturer string `json:"tubeManufacturer"`
	TubeModel        string `json:"tubeModel"`
	TubeSerial       string `json:"tubeSerial"`
	ControlSerial    string `json:"controlSerial"`

	// Step 3: checklist answers, merged by code.
	Checklist []domain.ChecklistAnswer `json:"checklist"`

	// Step 4: measurements.
	Measurements *domain.Measurements `json:"measurements"`

	// Step 5: review.
	SignedBy          string     `json:"signedBy"`
	CorrectiveAction  string     `json:"correctiveAction"`
	NextInspectionDue *time.Time `json:"nextInspectionDue"`
}

// SaveStep validates and stores one step's fields and advances the wizard to
// the following step. Steps may be revisited in any order.
func (s *HarpService) SaveStep(ctx context.Context, id uuid.UUID, step int, in StepInput) (*domain.HarpInspection, error) {
	h, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Completed() {
		return nil, conflict("inspection %s is completed", id)
	}

	switch step {
	case domain.StepFacility:
		err = s.saveFacility(ctx, h, in)
	case domain.StepTube:
		err = saveTube(h, in)
	case domain.StepChecklist:
		err = s.saveChecklist(h, in)
	case domain.StepMeasurements:
		err = saveMeasurements(h, in)
	case domain.StepReview:
		err = saveReview(h, in)
	default:
		err = validation.Invalid("step", fmt.Sprintf("must be between %d and %d", domain.StepFacility, domain.StepReview))
	}
	if err != nil {
		return nil, err
	}

	h.Step = max(h.Step, min(step+1, domain.StepReview))
	if err := h.Validate(); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "inspection step saved", "id", id, "step", step)
	return s.save(ctx, h)
}

func (s *HarpService) saveFacility(ctx context.Context, h *domain.HarpInspection, in StepInput) error {
	ve := &validation.Errors{}
	validation.RequiredID(ve, "clientId", in.ClientID)
	validation.RequiredID(ve, "equipmentId", in.EquipmentID)
	validation.RequiredTime(ve, "inspectionDate", in.InspectionDate)
	validation.Required(ve, "registrationNumber", in.RegistrationNumber)
	validation.MaxLength(ve, "registrationNumber", in.RegistrationNumber, 64)
	if err := ve.Err(); err != nil {
		return err
	}

	h.ClientID = in.ClientID
	h.EquipmentID = in.EquipmentID
	h.InspectorID = in.InspectorID
	h.InspectionDate = domain.Date(in.InspectionDate)
	h.RegistrationNumber = in.RegistrationNumber
	h.RoomLocation = in.RoomLocation
	_, err := s.checkFacility(ctx, h)
	return err
}

func saveTube(h *domain.HarpInspection, in StepInput) error {
	ve := &validation.Errors{}
	validation.Required(ve, "tubeManufacturer", in.TubeManufacturer)
	validation.Required(ve, "tubeModel", in.TubeModel)
	validation.Required(ve, "tubeSerial", in.TubeSerial)
	if err := ve.Err(); err != nil {
		return err
	}
	h.TubeManufacturer = in.TubeManufacturer
	h.TubeModel = in.TubeModel
	h.TubeSerial = in.TubeSerial
	h.ControlSerial = in.ControlSerial
	return nil
}

func (s *HarpService) saveChecklist(h *domain.HarpInspection, in StepInput) error {
	ve := &validation.Errors{}
	if len(in.Checklist) == 0 {
		ve.Add("checklist", "at least one answer is required")
	}
	seen := make(map[string]bool, len(in.Checklist))
	for _, a := range in.Checklist {
		if _, ok := s.checklist.Lookup(a.Code); !ok {
			ve.Add("checklist.code", fmt.Sprintf("%q is not a checklist item", a.Code))
			continue
		}
		if seen[a.Code] {
			ve.Add("checklist.code", fmt.Sprintf("%q is answered more than once", a.Code))
		}
		seen[a.Code] = true
		validation.Required(ve, "checklist.answer", string(a.Answer))
		validation.Enum(ve, "checklist.answer", a.Answer, domain.Answers)
		if a.Answer == domain.AnswerFail && a.Comment == "" {
			ve.Add("checklist.comment", fmt.Sprintf("%s: a comment is required for a failed item", a.Code))
		}
	}
	if err := ve.Err(); err != nil {
		return err
	}

	merged := make(map[string]domain.ChecklistAnswer, len(h.Checklist)+len(in.Checklist))
	for _, a := range h.Checklist {
		merged[a.Code] = a
	}
	for _, a := range in.Checklist {
		merged[a.Code] = a
	}
	h.Checklist = h.Checklist[:0]
	for _, code := range s.checklist.Codes() {
		if a, ok := merged[code]; ok {
			h.Checklist = append(h.Checklist, a)
		}
	}
	return nil
}

func saveMeasurements(h *domain.HarpInspection, in StepInput) error {
	m := in.Measurements
	if m == nil {
		return validation.Invalid("measurements", "is required")
	}
	ve := &validation.Errors{}
	validation.Range(ve, "measurements.kvpNominal", m.KVpNominal, harp.MinKVp, harp.MaxKVp)
	validation.Positive(ve, "measurements.kvpMeasured", m.KVpMeasured)
	validation.Positive(ve, "measurements.exposureTimeNominal", m.ExposureTimeNominal)
	validation.Positive(ve, "measurements.exposureTimeMeasured", m.ExposureTimeMeasured)
	validation.Positive(ve, "measurements.halfValueLayerMm", m.HalfValueLayerMM)
	validation.NonNegative(ve, "measurements.entranceExposureMR", m.EntranceExposureMR)
	if err := ve.Err(); err != nil {
		return err
	}
	copied := *m
	h.Measurements = &copied
	return nil
}

func saveReview(h *domain.HarpInspection, in StepInput) error {
	ve := &validation.Errors{}
	validation.Required(ve, "signedBy", in.SignedBy)
	if in.NextInspectionDue != nil && !in.NextInspectionDue.After(h.InspectionDate) {
		ve.Add("nextInspectionDue", "must be after the inspection date")
	}
	if err := ve.Err(); err != nil {
		return err
	}
	h.SignedBy = in.SignedBy
	h.CorrectiveAction = in.CorrectiveAction
	if in.NextInspectionDue != nil {
		due := domain.Date(*in.NextInspectionDue)
		h.NextInspectionDue = &due
	}
	return nil
}

// Complete signs off a report. Every checklist item must be answered and the
// measurements recorded. The result is fail when any item fails or a
// measurement is out of tolerance. Completed reports cannot change.
func (s *HarpService) Complete(ctx context.Context, id uuid.UUID) (*domain.HarpInspection, error) {
	h, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Completed() {
		return nil, conflict("inspection %s is already completed", id)
	}

	ve := &validation.Errors{}
	for _, code := range s.checklist.Codes() {
		if _, ok := h.Answer(code); !ok {
			ve.Add("checklist", fmt.Sprintf("%s is not answered", code))
		}
	}
	if !h.Measurements.Recorded() {
		ve.Add("measurements", "are required")
	}
	validation.Required(ve, "registrationNumber", h.RegistrationNumber)
	validation.Required(ve, "signedBy", h.SignedBy)
	if err := ve.Err(); err != nil {
		return nil, err
	}

	h.Result = domain.ResultPass
	if len(h.FailedItems()) > 0 || !harp.WithinTolerance(h.Measurements) {
		h.Result = domain.ResultFail
	}
	if h.Result == domain.ResultFail && h.CorrectiveAction == "" {
		return nil, validation.Invalid("correctiveAction", "is required when the inspection fails")
	}
	if h.NextInspectionDue == nil {
		due := domain.Date(h.InspectionDate).AddDate(1, 0, 0)
		h.NextInspectionDue = &due
	}
	now := s.now().UTC()
	h.CompletedAt = &now
	h.Status = domain.InspectionCompleted
	h.Step = domain.StepReview

	s.logger.InfoContext(ctx, "inspection completed", "id", id, "result", h.Result)
	return s.save(ctx, h)
}

func (s *HarpService) Delete(ctx context.Context, id uuid.UUID) error {
	h, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if h.Completed() {
		return conflict("inspection %s is completed", id)
	}
	return s.Resource.Delete(ctx, id)
}

// Create is not part of the wizard flow; drafts are opened with Start.
func (s *HarpService) Create(ctx context.Context, h *domain.HarpInspection) (*domain.HarpInspection, error) {
	return s.Start(ctx, StartInspection{
		ClientID:       h.ClientID,
		EquipmentID:    h.EquipmentID,
		InspectorID:    h.InspectorID,
		InspectionDate: h.InspectionDate,
	})
}

// DueWithin lists the latest completed inspection of each unit whose next
// inspection falls within the window from now.
func (s *HarpService) DueWithin(ctx context.Context, within time.Duration) ([]*domain.HarpInspection, error) {
	return s.store.DueBefore(ctx, s.now().Add(within))
}

// RenderPDF writes the printable inspection report to w.
func (s *HarpService) RenderPDF(ctx context.Context, id uuid.UUID, w io.Writer) (*domain.HarpInspection, error) {
	h, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, h.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inspection client: %w", err)
	}
	eq, err := s.equipment.Get(ctx, h.EquipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inspection equipment: %w", err)
	}
	if err := report.InspectionPDF(w, report.InspectionReport{
		Company:    s.company,
		Inspection: h,
		Client:     client,
		Equipment:  eq,
		Checklist:  s.checklist,
		Checks:     harp.Evaluate(h.Measurements),
	}); err != nil {
		return nil, err
	}
	return h, nil
}
