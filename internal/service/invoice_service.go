package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/vbonduro/fieldtech/internal/config"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/report"
	"github.com/vbonduro/fieldtech/internal/validation"
)

const invoiceCounter = "invoice"

type invoiceRepository interface {
	repository[domain.Invoice]
	ListOpen(ctx context.Context) ([]*domain.Invoice, error)
}

type counter interface {
	Next(ctx context.Context, name string) (int64, error)
}

type InvoiceService struct {
	*Resource[domain.Invoice, *domain.Invoice]
	store         invoiceRepository
	counters      counter
	clients       getter[domain.Client]
	repairs       getter[domain.Repair]
	parts         getter[domain.Part]
	notifications *NotificationService
	billing       config.Billing
}

func NewInvoiceService(
	store invoiceRepository,
	counters counter,
	clients getter[domain.Client],
	repairs getter[domain.Repair],
	parts getter[domain.Part],
	notifications *NotificationService,
	billing config.Billing,
	pub events.Publisher,
	logger *slog.Logger,
) *InvoiceService {
	s := &InvoiceService{
		Resource:      NewResource[domain.Invoice](store, pub, logger),
		store:         store,
		counters:      counters,
		clients:       clients,
		repairs:       repairs,
		parts:         parts,
		notifications: notifications,
		billing:       billing,
	}
	s.check = s.checkRefs
	s.preserve = func(_ context.Context, stored, incoming *domain.Invoice) error {
		if stored.Status == domain.InvoicePaid || stored.Status == domain.InvoiceVoid {
			return conflict("invoice %s is %s", stored.Number, stored.Status)
		}
		incoming.Number = stored.Number
		incoming.Status = stored.Status
		incoming.PaidAt = stored.PaidAt
		// Totals are fixed at creation; see Recalculate.
		incoming.Subtotal = stored.Subtotal
		incoming.Tax = stored.Tax
		incoming.Total = stored.Total
		return nil
	}
	return s
}

func (s *InvoiceService) checkRefs(ctx context.Context, inv *domain.Invoice) error {
	if _, err := mustExist(ctx, s.clients, "clientId", inv.ClientID); err != nil {
		return err
	}
	if inv.RepairID.Valid {
		r, err := mustExist(ctx, s.repairs, "repairId", inv.RepairID.UUID)
		if err != nil {
			return err
		}
		if r.ClientID != inv.ClientID {
			return validation.Invalid("repairId", "belongs to another client")
		}
	}
	return nil
}

// Create is Issue with a zero tax rate read as unset.
func (s *InvoiceService) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	return s.Issue(ctx, inv, decimal.NullDecimal{Decimal: inv.TaxRate, Valid: !inv.TaxRate.IsZero()})
}

// Issue numbers and prices a new invoice. Issue date defaults to today, due
// date to the payment terms after it. An unset taxRate takes the configured
// default; a set one, zero included, is used as given. Subtotal, tax and
// total are computed here once.
func (s *InvoiceService) Issue(ctx context.Context, inv *domain.Invoice, taxRate decimal.NullDecimal) (*domain.Invoice, error) {
	inv.ID = uuid.Nil
	inv.Status = domain.InvoiceDraft
	inv.PaidAt = nil
	if inv.IssueDate.IsZero() {
		inv.IssueDate = domain.Date(s.now())
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.IssueDate.Add(s.billing.PaymentTerms)
	}
	inv.TaxRate = s.billing.DefaultTaxRate
	if taxRate.Valid {
		inv.TaxRate = taxRate.Decimal
	}
	if err := s.validate(ctx, inv); err != nil {
		return nil, err
	}
	if len(inv.LineItems) == 0 {
		return nil, validation.Invalid("lineItems", "at least one line item is required")
	}
	inv.ComputeTotals()

	n, err := s.counters.Next(ctx, invoiceCounter)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	inv.Number = fmt.Sprintf("%s%05d", s.billing.InvoicePrefix, n)

	return s.insert(ctx, inv)
}

// Recalculate recomputes subtotal, tax and total from the current lines.
func (s *InvoiceService) Recalculate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoicePaid || inv.Status == domain.InvoiceVoid {
		return nil, conflict("invoice %s is %s", inv.Number, inv.Status)
	}
	inv.ComputeTotals()
	return s.save(ctx, inv)
}

// CreateFromRepair drafts an invoice billing a repair's labor and parts.
func (s *InvoiceService) CreateFromRepair(ctx context.Context, repairID uuid.UUID) (*domain.Invoice, error) {
	r, err := s.repairs.Get(ctx, repairID)
	if err != nil {
		return nil, err
	}
	if r.Status == domain.RepairCancelled {
		return nil, conflict("repair %s is cancelled", repairID)
	}

	existing, err := s.store.All(ctx, map[string]string{"repairId": repairID.String()})
	if err != nil {
		return nil, err
	}
	for _, inv := range existing {
		if inv.Status != domain.InvoiceVoid {
			return nil, conflict("repair is already billed on invoice %s", inv.Number)
		}
	}

	var lines []domain.LineItem
	if r.LaborHours.IsPositive() {
		lines = append(lines, domain.LineItem{
			Description: fmt.Sprintf("Labor: %s", firstLine(r.WorkPerformed, r.Problem)),
			Quantity:    r.LaborHours,
			UnitPrice:   r.LaborRate,
		})
	}
	for _, use := range r.PartsUsed {
		desc := "Part " + use.PartID.String()
		if p, err := s.parts.Get(ctx, use.PartID); err == nil {
			desc = fmt.Sprintf("%s %s", p.PartNumber, p.Name)
		}
		lines = append(lines, domain.LineItem{
			Description: desc,
			Quantity:    decimal.NewFromInt(int64(use.Quantity)),
			UnitPrice:   use.UnitPrice,
			PartID:      uuid.NullUUID{UUID: use.PartID, Valid: true},
		})
	}
	if len(lines) == 0 {
		return nil, validation.Invalid("repairId", "repair has no labor or parts to bill")
	}

	return s.Create(ctx, &domain.Invoice{
		ClientID:  r.ClientID,
		RepairID:  uuid.NullUUID{UUID: r.ID, Valid: true},
		LineItems: lines,
	})
}

func firstLine(candidates ...string) string {
	for _, c := range candidates {
		c, _, _ = strings.Cut(c, "\n")
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return "service"
}

// transition moves an invoice between states, rejecting moves not in from.
func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, to domain.InvoiceStatus, from []domain.InvoiceStatus, apply func(*domain.Invoice)) (*domain.Invoice, error) {
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, st := range from {
		if inv.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, conflict("cannot mark %s invoice %s as %s", inv.Status, inv.Number, to)
	}
	inv.Status = to
	if apply != nil {
		apply(inv)
	}
	return s.save(ctx, inv)
}

func (s *InvoiceService) MarkSent(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.transition(ctx, id, domain.InvoiceSent, []domain.InvoiceStatus{domain.InvoiceDraft}, nil)
}

// MarkPaid records payment at the given time, or now when at is zero.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (*domain.Invoice, error) {
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	return s.transition(ctx, id, domain.InvoicePaid,
		[]domain.InvoiceStatus{domain.InvoiceDraft, domain.InvoiceSent, domain.InvoiceOverdue},
		func(inv *domain.Invoice) { inv.PaidAt = &at })
}

func (s *InvoiceService) Void(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.transition(ctx, id, domain.InvoiceVoid,
		[]domain.InvoiceStatus{domain.InvoiceDraft, domain.InvoiceSent, domain.InvoiceOverdue}, nil)
}

// Delete removes draft invoices only; issued invoices must be voided.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != domain.InvoiceDraft {
		return conflict("invoice %s is %s; void it instead", inv.Number, inv.Status)
	}
	return s.Resource.Delete(ctx, id)
}

// SweepOverdue marks sent invoices past their due date as overdue and tells
// office staff. It returns how many invoices changed.
func (s *InvoiceService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	open, err := s.store.ListOpen(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, inv := range open {
		if inv.Status != domain.InvoiceSent || !inv.IsOverdue(now) {
			continue
		}
		inv.Status = domain.InvoiceOverdue
		if _, err := s.save(ctx, inv); err != nil {
			return swept, fmt.Errorf("failed to mark invoice %s overdue: %w", inv.Number, err)
		}
		swept++

		_, err := s.notifications.NotifyRoles(ctx, domain.Notification{
			Type:  domain.NotifyInvoiceOverdue,
			Title: fmt.Sprintf("Invoice %s is overdue", inv.Number),
			Message: fmt.Sprintf("Invoice %s for %s was due %s.",
				inv.Number, inv.Total.StringFixed(2), inv.DueDate.Format("2006-01-02")),
			Link: "/invoices/" + inv.ID.String(),
		}, domain.RoleOffice, domain.RoleAdmin)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to notify overdue invoice", "invoice", inv.Number, "error", err)
		}
	}
	if swept > 0 {
		s.logger.InfoContext(ctx, "overdue invoices swept", "count", swept)
	}
	return swept, nil
}

// RenderPDF writes the printable invoice to w.
func (s *InvoiceService) RenderPDF(ctx context.Context, id uuid.UUID, w io.Writer) (*domain.Invoice, error) {
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice client: %w", err)
	}
	if err := report.InvoicePDF(w, report.InvoiceReport{
		Company: s.billing.CompanyName,
		Invoice: inv,
		Client:  client,
	}); err != nil {
		return nil, err
	}
	return inv, nil
}
