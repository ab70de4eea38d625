package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/validation"
)

type scheduleRepository interface {
	repository[domain.Schedule]
	Overlapping(ctx context.Context, technicianID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*domain.Schedule, error)
	Range(ctx context.Context, from, to time.Time, technicianID uuid.NullUUID) ([]*domain.Schedule, error)
}

type ScheduleService struct {
	*Resource[domain.Schedule, *domain.Schedule]
	store         scheduleRepository
	users         getter[domain.User]
	clients       getter[domain.Client]
	notifications *NotificationService
}

func NewScheduleService(
	store scheduleRepository,
	users getter[domain.User],
	clients getter[domain.Client],
	notifications *NotificationService,
	pub events.Publisher,
	logger *slog.Logger,
) *ScheduleService {
	s := &ScheduleService{
		Resource:      NewResource[domain.Schedule](store, pub, logger),
		store:         store,
		users:         users,
		clients:       clients,
		notifications: notifications,
	}
	s.check = s.checkSlot
	return s
}

// checkSlot rejects appointments that double-book a technician.
func (s *ScheduleService) checkSlot(ctx context.Context, sc *domain.Schedule) error {
	if sc.ClientID.Valid {
		if _, err := mustExist(ctx, s.clients, "clientId", sc.ClientID.UUID); err != nil {
			return err
		}
	}
	if !sc.TechnicianID.Valid {
		return nil
	}
	if _, err := mustExist(ctx, s.users, "technicianId", sc.TechnicianID.UUID); err != nil {
		return err
	}
	if !sc.Active() {
		return nil
	}
	clashes, err := s.store.Overlapping(ctx, sc.TechnicianID.UUID, sc.StartAt, sc.EndAt, sc.ID)
	if err != nil {
		return err
	}
	if len(clashes) > 0 {
		c := clashes[0]
		return conflict("technician is already booked for %q from %s to %s",
			c.Title, c.StartAt.Format(time.RFC3339), c.EndAt.Format(time.RFC3339))
	}
	return nil
}

// Create books an appointment and notifies the assigned technician.
func (s *ScheduleService) Create(ctx context.Context, sc *domain.Schedule) (*domain.Schedule, error) {
	created, err := s.Resource.Create(ctx, sc)
	if err != nil {
		return nil, err
	}
	s.notifyTechnician(ctx, created, "New appointment")
	return created, nil
}

func (s *ScheduleService) Update(ctx context.Context, sc *domain.Schedule) (*domain.Schedule, error) {
	before, err := s.store.Get(ctx, sc.ID)
	if err != nil {
		return nil, err
	}
	updated, err := s.Resource.Update(ctx, sc)
	if err != nil {
		return nil, err
	}
	if updated.TechnicianID != before.TechnicianID || !updated.StartAt.Equal(before.StartAt) {
		s.notifyTechnician(ctx, updated, "Appointment changed")
	}
	return updated, nil
}

func (s *ScheduleService) notifyTechnician(ctx context.Context, sc *domain.Schedule, title string) {
	if !sc.TechnicianID.Valid || !sc.Active() {
		return
	}
	_, err := s.notifications.Create(ctx, &domain.Notification{
		UserID:  sc.TechnicianID,
		Type:    domain.NotifySchedule,
		Title:   fmt.Sprintf("%s: %s", title, sc.Title),
		Message: fmt.Sprintf("%s to %s", sc.StartAt.Format("Mon Jan 2 15:04"), sc.EndAt.Format("15:04 MST")),
		Link:    "/schedules/" + sc.ID.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to notify technician", "schedule_id", sc.ID, "error", err)
	}
}

// Range lists appointments overlapping [from, to), optionally for one
// technician.
func (s *ScheduleService) Range(ctx context.Context, from, to time.Time, technicianID uuid.NullUUID) ([]*domain.Schedule, error) {
	ve := &validation.Errors{}
	validation.RequiredTime(ve, "from", from)
	validation.RequiredTime(ve, "to", to)
	validation.After(ve, "to", from, to)
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return s.store.Range(ctx, from, to, technicianID)
}

// Upcoming lists appointments from now through the next days days.
func (s *ScheduleService) Upcoming(ctx context.Context, now time.Time, days int) ([]*domain.Schedule, error) {
	if days <= 0 {
		days = 7
	}
	return s.store.Range(ctx, now, now.AddDate(0, 0, days), uuid.NullUUID{})
}
