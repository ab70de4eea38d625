package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/validation"
)

type PartStore struct {
	*Table[domain.Part, *domain.Part]
}

func NewPartStore(db *sql.DB) *PartStore {
	return &PartStore{NewTable[domain.Part](db, Schema[domain.Part]{
		Table: domain.CollectionParts,
		Columns: []string{
			"part_number", "name", "description", "manufacturer", "category", "unit_cost",
			"unit_price", "quantity_on_hand", "reorder_threshold", "reorder_quantity",
			"quantity_on_order", "location", "supplier",
		},
		Values: func(p *domain.Part) []any {
			return []any{
				p.PartNumber, p.Name, p.Description, p.Manufacturer, p.Category, p.UnitCost,
				p.UnitPrice, p.QuantityOnHand, p.ReorderThreshold, p.ReorderQuantity,
				p.QuantityOnOrder, p.Location, p.Supplier,
			}
		},
		Fields: func(p *domain.Part) []any {
			return []any{
				&p.PartNumber, &p.Name, &p.Description, &p.Manufacturer, &p.Category, &p.UnitCost,
				&p.UnitPrice, &p.QuantityOnHand, &p.ReorderThreshold, &p.ReorderQuantity,
				&p.QuantityOnOrder, &p.Location, &p.Supplier,
			}
		},
		Filters: map[string]Filter{
			"category":     {Column: "category"},
			"manufacturer": {Column: "manufacturer"},
			"supplier":     {Column: "supplier"},
			"partNumber":   {Column: "part_number"},
		},
		Search: []string{"part_number", "name", "description", "manufacturer"},
		Sorts: map[string]string{
			"partNumber":     "part_number",
			"name":           "name",
			"category":       "category",
			"quantityOnHand": "quantity_on_hand",
		},
		DefaultSort: "name",
	})}
}

// AdjustStock adds delta to the quantity on hand in a single statement. A
// change that would take stock below zero fails with domain.ErrInvalidInput
// and leaves the part untouched.
func (s *PartStore) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Part, error) {
	query, args, err := sq.Update(s.Name()).
		Set("quantity_on_hand", sq.Expr("quantity_on_hand + ?", delta)).
		Set("updated_at", timeValue(s.now())).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("quantity_on_hand + ? >= 0", delta)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stock update: %w", err)
	}
	return s.applyStock(ctx, id, query, args, "insufficient stock")
}

// AddOnOrder records qty units as ordered from the supplier.
func (s *PartStore) AddOnOrder(ctx context.Context, id uuid.UUID, qty int) (*domain.Part, error) {
	query, args, err := sq.Update(s.Name()).
		Set("quantity_on_order", sq.Expr("quantity_on_order + ?", qty)).
		Set("updated_at", timeValue(s.now())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order update: %w", err)
	}
	return s.applyStock(ctx, id, query, args, "")
}

// Receive moves qty units from on order to on hand. Receiving more than was
// ordered clears the on-order quantity.
func (s *PartStore) Receive(ctx context.Context, id uuid.UUID, qty int) (*domain.Part, error) {
	query, args, err := sq.Update(s.Name()).
		Set("quantity_on_hand", sq.Expr("quantity_on_hand + ?", qty)).
		Set("quantity_on_order", sq.Expr("MAX(quantity_on_order - ?, 0)", qty)).
		Set("updated_at", timeValue(s.now())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build receive update: %w", err)
	}
	return s.applyStock(ctx, id, query, args, "")
}

func (s *PartStore) applyStock(ctx context.Context, id uuid.UUID, query string, args []any, guard string) (*domain.Part, error) {
	err := s.execOne(ctx, "update part stock", query, args...)
	if errors.Is(err, domain.ErrNotFound) && guard != "" {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, validation.Invalid("quantity", guard)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// LowStock returns parts at or below their reorder threshold.
func (s *PartStore) LowStock(ctx context.Context) ([]*domain.Part, error) {
	return s.query(ctx, s.selectAll().
		Where("quantity_on_hand <= reorder_threshold").
		OrderBy("name ASC", "id"))
}
