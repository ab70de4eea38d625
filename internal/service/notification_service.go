package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/mailer"
)

type notificationRepository interface {
	repository[domain.Notification]
	ListForUser(ctx context.Context, userID uuid.UUID, q domain.ListQuery) (*domain.Page[domain.Notification], error)
	AllForUser(ctx context.Context, userID uuid.UUID, filters map[string]string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	ExistsForLink(ctx context.Context, t domain.NotificationType, link string) (bool, error)
	DeleteForLink(ctx context.Context, t domain.NotificationType, link string) error
}

type userDirectory interface {
	getter[domain.User]
	All(ctx context.Context, filters map[string]string) ([]*domain.User, error)
}

type NotificationService struct {
	*Resource[domain.Notification, *domain.Notification]
	store  notificationRepository
	users  userDirectory
	mailer mailer.Mailer
}

func NewNotificationService(
	store notificationRepository,
	users userDirectory,
	m mailer.Mailer,
	pub events.Publisher,
	logger *slog.Logger,
) *NotificationService {
	if m == nil {
		m = mailer.Nop{}
	}
	s := &NotificationService{
		Resource: NewResource[domain.Notification](store, pub, logger),
		store:    store,
		users:    users,
		mailer:   m,
	}
	s.check = func(ctx context.Context, n *domain.Notification) error {
		if !n.UserID.Valid {
			return nil
		}
		_, err := mustExist(ctx, getter[domain.User](s.users), "userId", n.UserID.UUID)
		return err
	}
	return s
}

// Create stores n and, when it is addressed to an active user with an email
// address, sends it by mail as well. Mail failures are logged, not returned.
func (s *NotificationService) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	n.Read = false
	n.ReadAt = nil
	created, err := s.Resource.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	s.email(ctx, created)
	return created, nil
}

func (s *NotificationService) email(ctx context.Context, n *domain.Notification) {
	if !n.UserID.Valid {
		return
	}
	u, err := s.users.Get(ctx, n.UserID.UUID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to look up notification recipient", "user_id", n.UserID.UUID, "error", err)
		return
	}
	if !u.Active || u.Email == "" {
		return
	}
	body := n.Message
	if body == "" {
		body = n.Title
	}
	if err := s.mailer.Send(ctx, u.Email, n.Title, body); err != nil {
		s.logger.ErrorContext(ctx, "failed to email notification", "notification_id", n.ID, "error", err)
	}
}

// Delete removes a notification. The event carries the removed record so
// subscribers can tell whose it was.
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "record deleted", "id", id)
	s.publish(ctx, events.ActionDelete, id, n)
	return nil
}

// NotifyRoles sends a copy of n to every active user holding one of roles and
// returns how many were created.
func (s *NotificationService) NotifyRoles(ctx context.Context, n domain.Notification, roles ...domain.Role) (int, error) {
	users, err := s.users.All(ctx, map[string]string{"active": "true"})
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, u := range users {
		if !slices.Contains(roles, u.Role) {
			continue
		}
		msg := n
		msg.UserID = uuid.NullUUID{UUID: u.ID, Valid: true}
		if _, err := s.Create(ctx, &msg); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// ListForUser pages through notifications addressed to userID or broadcast.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, q domain.ListQuery) (*domain.Page[domain.Notification], error) {
	return s.store.ListForUser(ctx, userID, q)
}

// MarkRead marks one notification visible to userID as read. Notifications
// addressed to someone else are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID.Valid && n.UserID.UUID != userID {
		return nil, domain.ErrNotFound
	}
	if n.Read {
		return n, nil
	}
	if err := s.store.MarkRead(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	n, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ActionUpdate, n.ID, n)
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.store.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "notifications marked read", "user_id", userID, "count", n)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

// NotifyOnce broadcasts n unless a notification of the same type already
// points at n.Link. It reports whether one was created.
func (s *NotificationService) NotifyOnce(ctx context.Context, n domain.Notification) (bool, error) {
	exists, err := s.store.ExistsForLink(ctx, n.Type, n.Link)
	if err != nil || exists {
		return false, err
	}
	if _, err := s.Create(ctx, &n); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes notifications of type t pointing at link.
func (s *NotificationService) Clear(ctx context.Context, t domain.NotificationType, link string) error {
	return s.store.DeleteForLink(ctx, t, link)
}

// Inbox is the notification view of one user. It lists the user's own
// notifications and broadcasts. Only the recipient may change a notification
// unless manage is set.
type Inbox struct {
	s      *NotificationService
	userID uuid.UUID
	manage bool
}

func (s *NotificationService) Inbox(userID uuid.UUID, manage bool) *Inbox {
	return &Inbox{s: s, userID: userID, manage: manage}
}

// Visible reports whether n is addressed to the inbox owner or to everyone.
func (in *Inbox) Visible(n *domain.Notification) bool {
	return !n.UserID.Valid || n.UserID.UUID == in.userID
}

func (in *Inbox) owns(n *domain.Notification) bool {
	return in.manage || (n.UserID.Valid && n.UserID.UUID == in.userID)
}

// stored loads id for a change by the inbox owner.
func (in *Inbox) stored(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, err := in.s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.owns(n) {
		return n, nil
	}
	if in.Visible(n) {
		return nil, fmt.Errorf("notification %s belongs to everyone: %w", id, domain.ErrForbidden)
	}
	return nil, fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
}

func (in *Inbox) Get(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, err := in.s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !in.manage && !in.Visible(n) {
		return nil, fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	return n, nil
}

func (in *Inbox) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Notification], error) {
	return in.s.store.ListForUser(ctx, in.userID, q)
}

func (in *Inbox) All(ctx context.Context, filters map[string]string) ([]*domain.Notification, error) {
	return in.s.store.AllForUser(ctx, in.userID, filters)
}

// Create stores n. Without manage, n must be addressed to the inbox owner.
func (in *Inbox) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if !in.manage && (!n.UserID.Valid || n.UserID.UUID != in.userID) {
		return nil, fmt.Errorf("notifications may only be addressed to yourself: %w", domain.ErrForbidden)
	}
	return in.s.Create(ctx, n)
}

func (in *Inbox) Update(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	stored, err := in.stored(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if !in.manage {
		n.UserID = stored.UserID
	}
	return in.s.Update(ctx, n)
}

func (in *Inbox) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := in.stored(ctx, id); err != nil {
		return err
	}
	return in.s.Delete(ctx, id)
}
