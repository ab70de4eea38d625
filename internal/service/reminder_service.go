package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
)

// ReminderService raises notifications for equipment and X-ray units that
// are coming due. Each due date is announced once.
type ReminderService struct {
	equipment     *EquipmentService
	inspections   *HarpService
	clients       getter[domain.Client]
	notifications *NotificationService
	logger        *slog.Logger
}

func NewReminderService(
	equipment *EquipmentService,
	inspections *HarpService,
	clients getter[domain.Client],
	notifications *NotificationService,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		equipment:     equipment,
		inspections:   inspections,
		clients:       clients,
		notifications: notifications,
		logger:        logger.With("component", "reminders"),
	}
}

func dueLink(collection string, id uuid.UUID, due time.Time) string {
	return fmt.Sprintf("/%s/%s?due=%s", collection, id, due.Format(time.DateOnly))
}

func (s *ReminderService) clientName(ctx context.Context, id uuid.UUID) string {
	c, err := s.clients.Get(ctx, id)
	if err != nil {
		return "unknown client"
	}
	return c.Name
}

// ServiceDue notifies about equipment whose next service falls within the
// window. It returns how many new reminders were raised.
func (s *ReminderService) ServiceDue(ctx context.Context, within time.Duration) (int, error) {
	due, err := s.equipment.DueForService(ctx, within)
	if err != nil {
		return 0, fmt.Errorf("failed to list equipment due for service: %w", err)
	}

	created := 0
	for _, e := range due {
		if e.NextServiceDue == nil {
			continue
		}
		ok, err := s.notifications.NotifyOnce(ctx, domain.Notification{
			Type:  domain.NotifyServiceDue,
			Title: fmt.Sprintf("Service due: %s %s", e.Manufacturer, e.Model),
			Message: fmt.Sprintf("%s %s (serial %s) at %s is due for service on %s.",
				e.Manufacturer, e.Model, e.SerialNumber, s.clientName(ctx, e.ClientID),
				e.NextServiceDue.Format(time.DateOnly)),
			Link: dueLink(domain.CollectionEquipment, e.ID, *e.NextServiceDue),
		})
		if err != nil {
			return created, fmt.Errorf("failed to remind service for equipment %s: %w", e.ID, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.logger.InfoContext(ctx, "service reminders sent", "count", created)
	}
	return created, nil
}

// InspectionDue notifies about units whose next HARP inspection falls within
// the window.
func (s *ReminderService) InspectionDue(ctx context.Context, within time.Duration) (int, error) {
	due, err := s.inspections.DueWithin(ctx, within)
	if err != nil {
		return 0, fmt.Errorf("failed to list inspections due: %w", err)
	}

	created := 0
	for _, h := range due {
		if h.NextInspectionDue == nil {
			continue
		}
		ok, err := s.notifications.NotifyOnce(ctx, domain.Notification{
			Type:  domain.NotifyInspectionDue,
			Title: "HARP inspection due",
			Message: fmt.Sprintf("The X-ray unit in %s at %s is due for its HARP inspection on %s.",
				h.RoomLocation, s.clientName(ctx, h.ClientID), h.NextInspectionDue.Format(time.DateOnly)),
			Link: dueLink(domain.CollectionEquipment, h.EquipmentID, *h.NextInspectionDue),
		})
		if err != nil {
			return created, fmt.Errorf("failed to remind inspection for equipment %s: %w", h.EquipmentID, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.logger.InfoContext(ctx, "inspection reminders sent", "count", created)
	}
	return created, nil
}
