package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/validation"
)

const maxJSONBody = 1 << 20

type envelope struct {
	Data any       `json:"data"`
	Meta *pageMeta `json:"meta,omitempty"`
}

type pageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func (s *Server) sendJSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (s *Server) sendData(w http.ResponseWriter, r *http.Request, code int, data any) {
	s.sendJSON(w, r, code, envelope{Data: data})
}

func sendPage[T any](s *Server, w http.ResponseWriter, r *http.Request, page *domain.Page[T]) {
	items := page.Items
	if items == nil {
		items = []*T{}
	}
	s.sendJSON(w, r, http.StatusOK, envelope{
		Data: items,
		Meta: &pageMeta{Total: page.Total, Page: page.Page, PageSize: page.PageSize},
	})
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	body := errorBody{Error: err.Error()}

	var ve *validation.Errors
	switch {
	case errors.As(err, &ve):
		body.Error = validation.ErrInvalid.Error()
		body.Fields = ve.Fields()
	case code == http.StatusInternalServerError:
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "internal server error"
	case code == http.StatusUnauthorized:
		body.Error = domain.ErrUnauthorized.Error()
	}
	s.sendJSON(w, r, code, body)
}

// decodeJSON reads a required JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return validation.Invalid("body", "is required")
	}
	if err != nil {
		return validation.Invalid("body", "must be valid JSON")
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for requests whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return validation.Invalid("body", "must be valid JSON")
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, validation.Invalid(name, "must be a valid id")
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, validation.Invalid(name, "must be a number")
	}
	return n, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates.
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}
