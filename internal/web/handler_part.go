package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
)

func (s *Server) partRoutes(r chi.Router) {
	stock := s.allow(auth.ActionStock, domain.CollectionParts)

	r.With(s.allow(auth.ActionRead, domain.CollectionParts)).Get("/low-stock", s.handleLowStock)
	r.With(stock).Post("/{id}/adjust", s.stockAction(func(req stockRequest) int { return req.Delta }, s.svc.Parts.AdjustStock))
	r.With(stock).Post("/{id}/order", s.stockAction(func(req stockRequest) int { return req.Quantity }, s.svc.Parts.Order))
	r.With(stock).Post("/{id}/receive", s.stockAction(func(req stockRequest) int { return req.Quantity }, s.svc.Parts.Receive))
	newResource[domain.Part](s, s.svc.Parts, domain.CollectionParts, partExport).mount(r)
}

type stockRequest struct {
	Delta    int `json:"delta"`
	Quantity int `json:"quantity"`
}

type stockFunc func(ctx context.Context, id uuid.UUID, n int) (*domain.Part, error)

// stockAction reads the amount a stock operation needs from the request body.
func (s *Server) stockAction(amount func(stockRequest) int, fn stockFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		var req stockRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.sendError(w, r, err)
			return
		}
		p, err := fn(r.Context(), id, amount(req))
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		s.sendData(w, r, http.StatusOK, p)
	}
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := s.svc.Parts.LowStock(r.Context())
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if parts == nil {
		parts = []*domain.Part{}
	}
	s.sendData(w, r, http.StatusOK, parts)
}
