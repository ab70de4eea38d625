package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/report"
)

// crud is the service surface every collection exposes.
type crud[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[T], error)
	All(ctx context.Context, filters map[string]string) ([]*T, error)
	Create(ctx context.Context, rec *T) (*T, error)
	Update(ctx context.Context, rec *T) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type record[T any] interface {
	*T
	Base() *domain.Meta
}

// resource serves the list, get, create, update, delete and export routes of
// one collection.
type resource[T any, P record[T]] struct {
	s          *Server
	svc        crud[T]
	collection string
	export     exporter[T]

	// scope, when set, resolves the service for the calling user.
	scope func(r *http.Request) (crud[T], error)
	// create replaces the default create handler when set.
	create http.HandlerFunc
}

func newResource[T any, P record[T]](s *Server, svc crud[T], collection string, export exporter[T]) *resource[T, P] {
	return &resource[T, P]{s: s, svc: svc, collection: collection, export: export}
}

func (rs *resource[T, P]) service(r *http.Request) (crud[T], error) {
	if rs.scope != nil {
		return rs.scope(r)
	}
	return rs.svc, nil
}

func (rs *resource[T, P]) mount(r chi.Router) {
	read := rs.s.allow(auth.ActionRead, rs.collection)
	write := rs.s.allow(auth.ActionWrite, rs.collection)

	r.With(read).Get("/", rs.handleList)
	r.With(read).Get("/export", rs.handleExport)
	r.With(read).Get("/{id}", rs.handleGet)
	r.With(write).Post("/", rs.handleCreate)
	r.With(write).Put("/{id}", rs.handleUpdate)
	r.With(write).Delete("/{id}", rs.handleDelete)
}

func (rs *resource[T, P]) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	svc, err := rs.service(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	page, err := svc.List(r.Context(), q)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	sendPage(rs.s, w, r, page)
}

func (rs *resource[T, P]) handleGet(w http.ResponseWriter, r *http.Request) {
	svc, err := rs.service(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	rec, err := svc.Get(r.Context(), id)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	rs.s.sendData(w, r, http.StatusOK, rec)
}

func (rs *resource[T, P]) handleCreate(w http.ResponseWriter, r *http.Request) {
	if rs.create != nil {
		rs.create(w, r)
		return
	}
	svc, err := rs.service(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	rec := new(T)
	if err := decodeJSON(w, r, rec); err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	out, err := svc.Create(r.Context(), rec)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	rs.s.sendData(w, r, http.StatusCreated, out)
}

func (rs *resource[T, P]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	svc, err := rs.service(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	rec := new(T)
	if err := decodeJSON(w, r, rec); err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	P(rec).Base().ID = id
	out, err := svc.Update(r.Context(), rec)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	rs.s.sendData(w, r, http.StatusOK, out)
}

func (rs *resource[T, P]) handleDelete(w http.ResponseWriter, r *http.Request) {
	svc, err := rs.service(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	if err := svc.Delete(r.Context(), id); err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport writes every record matching the query filters as a
// spreadsheet.
func (rs *resource[T, P]) handleExport(w http.ResponseWriter, r *http.Request) {
	svc, err := rs.service(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	q, err := parseListQuery(r)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}
	recs, err := svc.All(r.Context(), q.Filters)
	if err != nil {
		rs.s.sendError(w, r, err)
		return
	}

	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rs.export.row(rec))
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rs.collection, rs.export.headers, rows); err != nil {
		rs.s.sendError(w, r, fmt.Errorf("failed to export %s: %w", rs.collection, err))
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", rs.collection, rs.s.now().Format("20060102"))
	w.Header().Set("Content-Type", report.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		rs.s.logger.ErrorContext(r.Context(), "failed to write export", "collection", rs.collection, "error", err)
	}
}
