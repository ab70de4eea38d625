package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type NotificationStore struct {
	*Table[domain.Notification, *domain.Notification]
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{NewTable[domain.Notification](db, Schema[domain.Notification]{
		Table:   domain.CollectionNotifications,
		Columns: []string{"user_id", "type", "title", "message", "link", "read", "read_at"},
		Values: func(n *domain.Notification) []any {
			return []any{n.UserID, n.Type, n.Title, n.Message, n.Link, n.Read, nullTimeValue(n.ReadAt)}
		},
		Fields: func(n *domain.Notification) []any {
			return []any{&n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.Read, nullTime{&n.ReadAt}}
		},
		Filters: map[string]Filter{
			"userId": {Column: "user_id", Kind: FilterID},
			"type":   {Column: "type"},
			"read":   {Column: "read", Kind: FilterBool},
			"link":   {Column: "link"},
		},
		Search:     []string{"title", "message"},
		DateColumn: "created_at",
	})}
}

// visibleTo matches notifications addressed to userID or broadcast to all.
func visibleTo(userID uuid.UUID) sq.Sqlizer {
	return sq.Or{sq.Eq{"user_id": userID}, sq.Eq{"user_id": nil}}
}

// ListForUser pages through the notifications userID can see.
func (s *NotificationStore) ListForUser(ctx context.Context, userID uuid.UUID, q domain.ListQuery) (*domain.Page[domain.Notification], error) {
	return s.list(ctx, q, visibleTo(userID))
}

// AllForUser returns every notification userID can see that matches filters.
func (s *NotificationStore) AllForUser(ctx context.Context, userID uuid.UUID, filters map[string]string) ([]*domain.Notification, error) {
	return s.all(ctx, filters, visibleTo(userID))
}

func (s *NotificationStore) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := sq.Update(s.Name()).
		Set("read", true).
		Set("read_at", timeValue(at)).
		Set("updated_at", timeValue(s.now())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read: %w", err)
	}
	return s.execOne(ctx, "mark notification read", query, args...)
}

// MarkAllRead marks every unread notification visible to userID as read and
// returns how many changed.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	query, args, err := sq.Update(s.Name()).
		Set("read", true).
		Set("read_at", timeValue(at)).
		Set("updated_at", timeValue(s.now())).
		Where(sq.Eq{"read": false}).
		Where(visibleTo(userID)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read: %w", err)
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrap("mark notifications read", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(n), nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(s.Name()).
		Where(sq.Eq{"read": false}).
		Where(visibleTo(userID)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unread count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, wrap("count unread notifications", err)
	}
	return n, nil
}

// ExistsForLink reports whether a notification of type t already points at link.
func (s *NotificationStore) ExistsForLink(ctx context.Context, t domain.NotificationType, link string) (bool, error) {
	n, err := s.Count(ctx, map[string]string{"type": string(t), "link": link})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteForLink removes notifications of type t pointing at link.
func (s *NotificationStore) DeleteForLink(ctx context.Context, t domain.NotificationType, link string) error {
	query, args, err := sq.Delete(s.Name()).Where(sq.Eq{"type": t, "link": link}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("delete notifications", err)
	}
	return nil
}
