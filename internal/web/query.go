package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/validation"
)

// listParams are the query parameters that shape a listing rather than
// filter it. Every other parameter is passed to the store as a filter, which
// rejects columns it does not allow.
var listParams = map[string]bool{
	"page":     true,
	"pageSize": true,
	"sort":     true,
	"order":    true,
	"q":        true,
	"from":     true,
	"to":       true,
	"format":   true,
	"token":    true,
}

func parseListQuery(r *http.Request) (domain.ListQuery, error) {
	v := r.URL.Query()
	ve := &validation.Errors{}
	q := domain.ListQuery{
		Filters: map[string]string{},
		Search:  strings.TrimSpace(v.Get("q")),
		Sort:    v.Get("sort"),
	}

	q.Page = intParam(ve, v.Get("page"), "page")
	q.PageSize = intParam(ve, v.Get("pageSize"), "pageSize")

	switch strings.ToLower(v.Get("order")) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		ve.Add("order", "must be asc or desc")
	}

	if raw := v.Get("from"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			ve.Add("from", "must be a date")
		} else {
			q.From = &t
		}
	}
	if raw := v.Get("to"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			ve.Add("to", "must be a date")
		} else {
			q.To = &t
		}
	}

	for key, values := range v {
		if listParams[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		q.Filters[key] = values[0]
	}

	if err := ve.Err(); err != nil {
		return domain.ListQuery{}, err
	}
	return q.Normalize(), nil
}

func intParam(ve *validation.Errors, raw, field string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		ve.Add(field, "must be a number")
	}
	return n
}
