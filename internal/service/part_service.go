package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/validation"
)

type partRepository interface {
	repository[domain.Part]
	stockAdjuster
	AddOnOrder(ctx context.Context, id uuid.UUID, qty int) (*domain.Part, error)
	Receive(ctx context.Context, id uuid.UUID, qty int) (*domain.Part, error)
	LowStock(ctx context.Context) ([]*domain.Part, error)
}

type PartService struct {
	*Resource[domain.Part, *domain.Part]
	store         partRepository
	notifications *NotificationService
}

func NewPartService(store partRepository, notifications *NotificationService, pub events.Publisher, logger *slog.Logger) *PartService {
	return &PartService{
		Resource:      NewResource[domain.Part](store, pub, logger),
		store:         store,
		notifications: notifications,
	}
}

func partLink(id uuid.UUID) string {
	return "/parts/" + id.String()
}

func (s *PartService) Update(ctx context.Context, p *domain.Part) (*domain.Part, error) {
	updated, err := s.Resource.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.clearIfRestocked(ctx, updated)
	return updated, nil
}

func (s *PartService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Resource.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.notifications.Clear(ctx, domain.NotifyLowStock, partLink(id)); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear low stock notifications", "part_id", id, "error", err)
	}
	return nil
}

// AdjustStock changes the quantity on hand by delta. Stock never goes below
// zero.
func (s *PartService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Part, error) {
	if delta == 0 {
		return nil, validation.Invalid("delta", "must not be zero")
	}
	p, err := s.store.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "stock adjusted", "part_id", id, "delta", delta, "on_hand", p.QuantityOnHand)
	s.publish(ctx, events.ActionUpdate, p.ID, p)
	s.clearIfRestocked(ctx, p)
	return p, nil
}

// Order records a supplier order. A non-positive qty orders the part's
// reorder quantity.
func (s *PartService) Order(ctx context.Context, id uuid.UUID, qty int) (*domain.Part, error) {
	if qty <= 0 {
		p, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		qty = p.ReorderQuantity
	}
	if qty <= 0 {
		return nil, validation.Invalid("quantity", "must be positive when the part has no reorder quantity")
	}
	p, err := s.store.AddOnOrder(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "part ordered", "part_id", id, "quantity", qty)
	s.publish(ctx, events.ActionUpdate, p.ID, p)
	return p, nil
}

// Receive books qty units of an order into stock. A non-positive qty receives
// everything on order.
func (s *PartService) Receive(ctx context.Context, id uuid.UUID, qty int) (*domain.Part, error) {
	if qty <= 0 {
		p, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		qty = p.QuantityOnOrder
	}
	if qty <= 0 {
		return nil, validation.Invalid("quantity", "nothing is on order")
	}
	p, err := s.store.Receive(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "part received", "part_id", id, "quantity", qty, "on_hand", p.QuantityOnHand)
	s.publish(ctx, events.ActionUpdate, p.ID, p)
	s.clearIfRestocked(ctx, p)
	return p, nil
}

func (s *PartService) LowStock(ctx context.Context) ([]*domain.Part, error) {
	return s.store.LowStock(ctx)
}

// NotifyLowStock broadcasts one low stock notification per part at or below
// its reorder threshold. A part is not notified again until it has been
// restocked above the threshold.
func (s *PartService) NotifyLowStock(ctx context.Context) error {
	parts, err := s.store.LowStock(ctx)
	if err != nil {
		return err
	}
	created := 0
	for _, p := range parts {
		ok, err := s.notifications.NotifyOnce(ctx, domain.Notification{
			Type:  domain.NotifyLowStock,
			Title: fmt.Sprintf("Low stock: %s", p.Name),
			Message: fmt.Sprintf("%s (%s) has %d on hand, %d on order; reorder threshold is %d.",
				p.Name, p.PartNumber, p.QuantityOnHand, p.QuantityOnOrder, p.ReorderThreshold),
			Link: partLink(p.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to notify low stock for part %s: %w", p.ID, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.logger.InfoContext(ctx, "low stock notifications sent", "count", created)
	}
	return nil
}

func (s *PartService) clearIfRestocked(ctx context.Context, p *domain.Part) {
	if p.NeedsReorder() {
		return
	}
	if err := s.notifications.Clear(ctx, domain.NotifyLowStock, partLink(p.ID)); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear low stock notifications", "part_id", p.ID, "error", err)
	}
}
