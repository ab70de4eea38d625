package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/service"
)

func (s *Server) inspectionRoutes(r chi.Router) {
	write := s.allow(auth.ActionWrite, domain.CollectionHarpInspections)
	read := s.allow(auth.ActionRead, domain.CollectionHarpInspections)

	r.With(write).Put("/{id}/steps/{step}", s.handleSaveStep)
	r.With(write).Post("/{id}/complete", s.handleCompleteInspection)
	r.With(read).Get("/{id}/pdf", s.handleInspectionPDF)
	newResource[domain.HarpInspection](s, s.svc.Inspections, domain.CollectionHarpInspections, inspectionExport).mount(r)
}

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	s.sendData(w, r, http.StatusOK, s.svc.Inspections.Checklist())
}

func (s *Server) handleSaveStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	step, err := pathInt(r, "step")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	var in service.StepInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.sendError(w, r, err)
		return
	}
	h, err := s.svc.Inspections.SaveStep(r.Context(), id, step, in)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, h)
}

func (s *Server) handleCompleteInspection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	h, err := s.svc.Inspections.Complete(r.Context(), id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, h)
}

func (s *Server) handleInspectionPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	var buf bytes.Buffer
	h, err := s.svc.Inspections.RenderPDF(r.Context(), id, &buf)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendPDF(w, r, fmt.Sprintf("harp-%s-%s.pdf", h.InspectionDate.Format("20060102"), h.ID.String()[:8]), &buf)
}
