package web

import (
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/validation"
)

// handleScheduleRange lists the calendar between from and to, optionally for
// one technician.
func (s *Server) handleScheduleRange(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	ve := &validation.Errors{}

	var from, to time.Time
	var err error
	if from, err = parseTime(v.Get("from")); err != nil {
		ve.Add("from", "must be a date")
	}
	if to, err = parseTime(v.Get("to")); err != nil {
		ve.Add("to", "must be a date")
	}
	var technician uuid.NullUUID
	if raw := v.Get("technicianId"); raw != "" {
		if technician.UUID, err = uuid.FromString(raw); err != nil {
			ve.Add("technicianId", "must be a valid id")
		}
		technician.Valid = true
	}
	if err := ve.Err(); err != nil {
		s.sendError(w, r, err)
		return
	}

	schedules, err := s.svc.Schedules.Range(r.Context(), from, to, technician)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if schedules == nil {
		schedules = []*domain.Schedule{}
	}
	s.sendData(w, r, http.StatusOK, schedules)
}
