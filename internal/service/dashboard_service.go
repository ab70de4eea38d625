package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/fieldtech/internal/domain"
)

const (
	trendMonths        = 12
	upcomingWindowDays = 7
	inspectionWindow   = 30 * 24 * time.Hour
)

type lister[T any] interface {
	All(ctx context.Context, filters map[string]string) ([]*T, error)
}

// DashboardSources are the collections the dashboard reads.
type DashboardSources struct {
	Clients     lister[domain.Client]
	Equipment   lister[domain.Equipment]
	Repairs     lister[domain.Repair]
	Invoices    lister[domain.Invoice]
	Parts       lister[domain.Part]
	Schedules   lister[domain.Schedule]
	Inspections lister[domain.HarpInspection]
}

type DashboardService struct {
	src DashboardSources
}

func NewDashboardService(src DashboardSources) *DashboardService {
	return &DashboardService{src: src}
}

// MonthRevenue is the paid total for one calendar month.
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Stats struct {
	ActiveClients     int                            `json:"activeClients"`
	EquipmentByStatus map[domain.EquipmentStatus]int `json:"equipmentByStatus"`
	OpenRepairs       int                            `json:"openRepairs"`
	RevenuePaid       decimal.Decimal                `json:"revenuePaid"`
	Outstanding       decimal.Decimal                `json:"outstanding"`
	OverdueCount      int                            `json:"overdueCount"`
	OverdueAmount     decimal.Decimal                `json:"overdueAmount"`
	MonthlyRevenue    []MonthRevenue                 `json:"monthlyRevenue"`
	LowStockParts     int                            `json:"lowStockParts"`
	UpcomingSchedules int                            `json:"upcomingSchedules"`
	InspectionsDue    int                            `json:"inspectionsDue"`
	FailedInspections int                            `json:"failedInspections"`
}

// DashboardData is every record the statistics are computed from.
type DashboardData struct {
	Clients     []*domain.Client
	Equipment   []*domain.Equipment
	Repairs     []*domain.Repair
	Invoices    []*domain.Invoice
	Parts       []*domain.Part
	Schedules   []*domain.Schedule
	Inspections []*domain.HarpInspection
}

// Stats loads every collection and aggregates it in memory.
func (s *DashboardService) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	var d DashboardData
	var err error
	if d.Clients, err = s.src.Clients.All(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	if d.Equipment, err = s.src.Equipment.All(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	if d.Repairs, err = s.src.Repairs.All(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to load repairs: %w", err)
	}
	if d.Invoices, err = s.src.Invoices.All(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	if d.Parts, err = s.src.Parts.All(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to load parts: %w", err)
	}
	if d.Schedules, err = s.src.Schedules.All(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}
	if d.Inspections, err = s.src.Inspections.All(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to load inspections: %w", err)
	}
	return ComputeStats(d, now), nil
}

// ComputeStats aggregates d as of now.
func ComputeStats(d DashboardData, now time.Time) *Stats {
	now = now.UTC()
	st := &Stats{
		EquipmentByStatus: make(map[domain.EquipmentStatus]int, len(domain.EquipmentStatuses)),
		RevenuePaid:       decimal.Zero,
		Outstanding:       decimal.Zero,
		OverdueAmount:     decimal.Zero,
		MonthlyRevenue:    revenueMonths(now),
	}

	for _, c := range d.Clients {
		if c.Status == domain.ClientActive {
			st.ActiveClients++
		}
	}
	for _, status := range domain.EquipmentStatuses {
		st.EquipmentByStatus[status] = 0
	}
	for _, e := range d.Equipment {
		st.EquipmentByStatus[e.Status]++
	}
	for _, r := range d.Repairs {
		if r.Status.Open() {
			st.OpenRepairs++
		}
	}

	months := make(map[string]int, len(st.MonthlyRevenue))
	for i, m := range st.MonthlyRevenue {
		months[m.Month] = i
	}
	for _, inv := range d.Invoices {
		switch {
		case inv.Status == domain.InvoicePaid:
			st.RevenuePaid = st.RevenuePaid.Add(inv.Total)
			if inv.PaidAt != nil {
				if i, ok := months[inv.PaidAt.UTC().Format("2006-01")]; ok {
					st.MonthlyRevenue[i].Revenue = st.MonthlyRevenue[i].Revenue.Add(inv.Total)
				}
			}
		case inv.Outstanding():
			st.Outstanding = st.Outstanding.Add(inv.Total)
			if inv.IsOverdue(now) {
				st.OverdueCount++
				st.OverdueAmount = st.OverdueAmount.Add(inv.Total)
			}
		}
	}

	for _, p := range d.Parts {
		if p.NeedsReorder() {
			st.LowStockParts++
		}
	}

	horizon := now.AddDate(0, 0, upcomingWindowDays)
	for _, sc := range d.Schedules {
		if sc.Active() && sc.Status != domain.ScheduleCompleted &&
			sc.StartAt.Before(horizon) && sc.EndAt.After(now) {
			st.UpcomingSchedules++
		}
	}

	st.InspectionsDue = len(latestDue(d.Inspections, now.Add(inspectionWindow)))
	for _, h := range d.Inspections {
		if h.Completed() && h.Result == domain.ResultFail {
			st.FailedInspections++
		}
	}
	return st
}

// revenueMonths returns the trailing trendMonths months ending with now's
// month, oldest first, each with zero revenue.
func revenueMonths(now time.Time) []MonthRevenue {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthRevenue, trendMonths)
	for i := range out {
		m := first.AddDate(0, i-(trendMonths-1), 0)
		out[i] = MonthRevenue{Month: m.Format("2006-01"), Revenue: decimal.Zero}
	}
	return out
}

// latestDue keeps the most recent completed inspection of each unit and
// returns those due on or before before.
func latestDue(inspections []*domain.HarpInspection, before time.Time) []*domain.HarpInspection {
	latest := make(map[string]*domain.HarpInspection)
	for _, h := range inspections {
		if !h.Completed() {
			continue
		}
		key := h.EquipmentID.String()
		if cur, ok := latest[key]; !ok || h.InspectionDate.After(cur.InspectionDate) {
			latest[key] = h
		}
	}
	var due []*domain.HarpInspection
	for _, h := range latest {
		if h.NextInspectionDue != nil && !h.NextInspectionDue.After(before) {
			due = append(due, h)
		}
	}
	return due
}
