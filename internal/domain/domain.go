package domain

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/validation"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidInput = validation.ErrInvalid
)

// Collection names double as table names and realtime channel names.
const (
	CollectionClients         = "clients"
	CollectionEquipment       = "equipment"
	CollectionRepairs         = "repairs"
	CollectionInvoices        = "invoices"
	CollectionHarpInspections = "harp_inspections"
	CollectionParts           = "parts"
	CollectionSchedules       = "schedules"
	CollectionManuals         = "manuals"
	CollectionNotifications   = "notifications"
	CollectionPhotos          = "photos"
	CollectionUsers           = "users"
)

// Meta is embedded by every stored record.
type Meta struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Base gives generic code access to the embedded Meta.
func (m *Meta) Base() *Meta { return m }

// ListQuery describes one page of a filtered listing.
type ListQuery struct {
	Filters  map[string]string
	Search   string
	From     *time.Time
	To       *time.Time
	Sort     string
	Desc     bool
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// Normalize clamps paging values into range.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Offset is the row offset of the page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one page of a listing.
type Page[T any] struct {
	Items    []*T `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
}

// PageCount is the number of pages for Total.
func (p Page[T]) PageCount() int {
	if p.PageSize == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
