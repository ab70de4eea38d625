package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
)

func (s *Server) invoiceRoutes(r chi.Router) {
	write := s.allow(auth.ActionWrite, domain.CollectionInvoices)
	read := s.allow(auth.ActionRead, domain.CollectionInvoices)

	r.With(write).Post("/from-repair/{repairId}", s.handleInvoiceFromRepair)
	r.With(write).Post("/{id}/send", s.invoiceAction(s.svc.Invoices.MarkSent))
	r.With(write).Post("/{id}/void", s.invoiceAction(s.svc.Invoices.Void))
	r.With(write).Post("/{id}/recalculate", s.invoiceAction(s.svc.Invoices.Recalculate))
	r.With(write).Post("/{id}/pay", s.handlePayInvoice)
	r.With(read).Get("/{id}/pdf", s.handleInvoicePDF)
	res := newResource[domain.Invoice](s, s.svc.Invoices, domain.CollectionInvoices, invoiceExport)
	res.create = s.handleCreateInvoice
	res.mount(r)
}

// invoiceRequest tells an omitted taxRate apart from an explicit zero.
type invoiceRequest struct {
	domain.Invoice
	TaxRate decimal.NullDecimal `json:"taxRate"`
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	inv, err := s.svc.Invoices.Issue(r.Context(), &req.Invoice, req.TaxRate)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusCreated, inv)
}

// invoiceAction adapts a single-invoice transition to a handler.
func (s *Server) invoiceAction(fn func(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		inv, err := fn(r.Context(), id)
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		s.sendData(w, r, http.StatusOK, inv)
	}
}

type payRequest struct {
	PaidAt *time.Time `json:"paidAt"`
}

func (s *Server) handlePayInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	var req payRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	at := s.now()
	if req.PaidAt != nil {
		at = *req.PaidAt
	}
	inv, err := s.svc.Invoices.MarkPaid(r.Context(), id, at)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, inv)
}

func (s *Server) handleInvoiceFromRepair(w http.ResponseWriter, r *http.Request) {
	repairID, err := pathID(r, "repairId")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	inv, err := s.svc.Invoices.CreateFromRepair(r.Context(), repairID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusCreated, inv)
}

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	var buf bytes.Buffer
	inv, err := s.svc.Invoices.RenderPDF(r.Context(), id, &buf)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendPDF(w, r, inv.Number+".pdf", &buf)
}

func (s *Server) sendPDF(w http.ResponseWriter, r *http.Request, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to write pdf", "filename", filename, "error", err)
	}
}
