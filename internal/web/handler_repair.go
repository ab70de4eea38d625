package web

import (
	"net/http"

	"github.com/vbonduro/fieldtech/internal/service"
)

// handleCompleteRepair closes a repair, consuming the parts it used. The body
// may be empty when the repair already carries its completion details.
func (s *Server) handleCompleteRepair(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	var in service.CompleteRepair
	if err := decodeOptionalJSON(w, r, &in); err != nil {
		s.sendError(w, r, err)
		return
	}
	rep, err := s.svc.Repairs.Complete(r.Context(), id, in)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, rep)
}
