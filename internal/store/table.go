package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/validation"
)

// Record is satisfied by pointers to entities that embed domain.Meta.
type Record[T any] interface {
	*T
	Base() *domain.Meta
}

type FilterKind int

const (
	FilterText FilterKind = iota
	FilterID
	FilterBool
)

// Filter maps a query key onto a column that may be matched for equality.
type Filter struct {
	Column string
	Kind   FilterKind
}

// Schema describes how an entity maps onto its table. Columns excludes the
// id, created_at and updated_at columns which every table carries.
type Schema[T any] struct {
	Table   string
	Columns []string
	Values  func(*T) []any
	Fields  func(*T) []any

	Filters     map[string]Filter
	Search      []string
	DateColumn  string
	Sorts       map[string]string
	DefaultSort string
	DefaultDesc bool
}

// Table is the generic data access layer shared by every entity store.
type Table[T any, P Record[T]] struct {
	db     *sql.DB
	schema Schema[T]
	now    func() time.Time
}

func NewTable[T any, P Record[T]](db *sql.DB, schema Schema[T]) *Table[T, P] {
	if schema.Sorts == nil {
		schema.Sorts = map[string]string{}
	}
	schema.Sorts["createdAt"] = "created_at"
	schema.Sorts["updatedAt"] = "updated_at"
	if schema.DefaultSort == "" {
		schema.DefaultSort = "created_at"
		schema.DefaultDesc = true
	}
	return &Table[T, P]{db: db, schema: schema, now: time.Now}
}

// Name is the table name.
func (t *Table[T, P]) Name() string {
	return t.schema.Table
}

func (t *Table[T, P]) entity() string {
	return strings.TrimSuffix(t.schema.Table, "s")
}

func (t *Table[T, P]) columns() []string {
	return append([]string{"id", "created_at", "updated_at"}, t.schema.Columns...)
}

func (t *Table[T, P]) selectAll() sq.SelectBuilder {
	return sq.Select(t.columns()...).From(t.schema.Table)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (t *Table[T, P]) scan(row rowScanner) (*T, error) {
	rec := new(T)
	meta := P(rec).Base()
	dest := append([]any{&meta.ID, utcTime{&meta.CreatedAt}, utcTime{&meta.UpdatedAt}}, t.schema.Fields(rec)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create assigns an id and timestamps when they are unset and inserts rec.
func (t *Table[T, P]) Create(ctx context.Context, rec *T) error {
	meta := P(rec).Base()
	if meta.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate id: %w", err)
		}
		meta.ID = id
	}
	now := t.now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = meta.CreatedAt
	}

	values := append([]any{meta.ID, timeValue(meta.CreatedAt), timeValue(meta.UpdatedAt)}, t.schema.Values(rec)...)
	query, args, err := sq.Insert(t.schema.Table).Columns(t.columns()...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("create "+t.entity(), err)
	}
	return nil
}

// Get returns the record with id or domain.ErrNotFound.
func (t *Table[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	query, args, err := t.selectAll().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}
	rec, err := t.scan(t.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrap("get "+t.entity(), err)
	}
	return rec, nil
}

// Update writes every column of rec and bumps UpdatedAt.
func (t *Table[T, P]) Update(ctx context.Context, rec *T) error {
	meta := P(rec).Base()
	meta.UpdatedAt = t.now().UTC()

	set := map[string]any{"updated_at": timeValue(meta.UpdatedAt)}
	for i, v := range t.schema.Values(rec) {
		set[t.schema.Columns[i]] = v
	}
	query, args, err := sq.Update(t.schema.Table).SetMap(set).Where(sq.Eq{"id": meta.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	return t.execOne(ctx, "update "+t.entity(), query, args...)
}

func (t *Table[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := sq.Delete(t.schema.Table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	return t.execOne(ctx, "delete "+t.entity(), query, args...)
}

// execOne runs a statement expected to touch exactly one row.
func (t *Table[T, P]) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrap(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: %w", op, domain.ErrNotFound)
	}
	return nil
}

// List returns one page of records matching q.
func (t *Table[T, P]) List(ctx context.Context, q domain.ListQuery) (*domain.Page[T], error) {
	return t.list(ctx, q, nil)
}

func (t *Table[T, P]) list(ctx context.Context, q domain.ListQuery, extra sq.Sqlizer) (*domain.Page[T], error) {
	q = q.Normalize()

	where, err := t.where(q)
	if err != nil {
		return nil, err
	}
	if extra != nil {
		where = append(where, extra)
	}
	order, err := t.orderBy(q)
	if err != nil {
		return nil, err
	}

	countQuery := sq.Select("COUNT(*)").From(t.schema.Table)
	selectQuery := t.selectAll()
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
		selectQuery = selectQuery.Where(where)
	}

	query, args, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count: %w", err)
	}
	var total int
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, wrap("count "+t.schema.Table, err)
	}

	items, err := t.query(ctx, selectQuery.
		OrderBy(order...).
		Limit(uint64(q.PageSize)).
		Offset(uint64(q.Offset())))
	if err != nil {
		return nil, err
	}

	return &domain.Page[T]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// All returns every record matching filters, in default order.
func (t *Table[T, P]) All(ctx context.Context, filters map[string]string) ([]*T, error) {
	return t.all(ctx, filters, nil)
}

func (t *Table[T, P]) all(ctx context.Context, filters map[string]string, extra sq.Sqlizer) ([]*T, error) {
	where, err := t.where(domain.ListQuery{Filters: filters})
	if err != nil {
		return nil, err
	}
	if extra != nil {
		where = append(where, extra)
	}
	b := t.selectAll().OrderBy(t.defaultOrder()...)
	if len(where) > 0 {
		b = b.Where(where)
	}
	return t.query(ctx, b)
}

// Count returns the number of records matching filters.
func (t *Table[T, P]) Count(ctx context.Context, filters map[string]string) (int, error) {
	where, err := t.where(domain.ListQuery{Filters: filters})
	if err != nil {
		return 0, err
	}
	b := sq.Select("COUNT(*)").From(t.schema.Table)
	if len(where) > 0 {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}
	var n int
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, wrap("count "+t.schema.Table, err)
	}
	return n, nil
}

func (t *Table[T, P]) query(ctx context.Context, b sq.SelectBuilder) ([]*T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list "+t.schema.Table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "table", t.schema.Table, "error", err)
		}
	}()

	items := []*T{}
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.entity(), err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t.schema.Table, err)
	}
	return items, nil
}

func (t *Table[T, P]) where(q domain.ListQuery) (sq.And, error) {
	var where sq.And
	ve := &validation.Errors{}

	for key, raw := range q.Filters {
		f, ok := t.schema.Filters[key]
		if !ok {
			ve.Add(key, "is not a filterable field")
			continue
		}
		switch f.Kind {
		case FilterID:
			if raw == "" || raw == "null" {
				where = append(where, sq.Eq{f.Column: nil})
				continue
			}
			id, err := uuid.FromString(raw)
			if err != nil {
				ve.Add(key, "must be a valid id")
				continue
			}
			where = append(where, sq.Eq{f.Column: id})
		case FilterBool:
			switch raw {
			case "true", "1":
				where = append(where, sq.Eq{f.Column: true})
			case "false", "0":
				where = append(where, sq.Eq{f.Column: false})
			default:
				ve.Add(key, "must be true or false")
			}
		default:
			where = append(where, sq.Eq{f.Column: raw})
		}
	}

	if s := strings.TrimSpace(q.Search); s != "" && len(t.schema.Search) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		var or sq.Or
		for _, col := range t.schema.Search {
			or = append(or, sq.Expr("LOWER("+col+") LIKE ? ESCAPE '\\'", pattern))
		}
		where = append(where, or)
	}

	if q.From != nil || q.To != nil {
		if t.schema.DateColumn == "" {
			ve.Add("from", "date range is not supported")
		} else {
			if q.From != nil {
				where = append(where, sq.GtOrEq{t.schema.DateColumn: timeValue(*q.From)})
			}
			if q.To != nil {
				where = append(where, sq.LtOrEq{t.schema.DateColumn: timeValue(*q.To)})
			}
		}
	}

	if err := ve.Err(); err != nil {
		return nil, err
	}
	return where, nil
}

func (t *Table[T, P]) orderBy(q domain.ListQuery) ([]string, error) {
	if q.Sort == "" {
		return t.defaultOrder(), nil
	}
	col, ok := t.schema.Sorts[q.Sort]
	if !ok {
		return nil, validation.Invalid("sort", "is not a sortable field")
	}
	return []string{col + direction(q.Desc), "id"}, nil
}

func (t *Table[T, P]) defaultOrder() []string {
	return []string{t.schema.DefaultSort + direction(t.schema.DefaultDesc), "id"}
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
