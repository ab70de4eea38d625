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

type UserStore struct {
	*Table[domain.User, *domain.User]
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{NewTable[domain.User](db, Schema[domain.User]{
		Table:   domain.CollectionUsers,
		Columns: []string{"email", "name", "role", "phone", "active", "password_hash", "last_login_at"},
		Values: func(u *domain.User) []any {
			return []any{u.Email, u.Name, u.Role, u.Phone, u.Active, u.PasswordHash, nullTimeValue(u.LastLoginAt)}
		},
		Fields: func(u *domain.User) []any {
			return []any{&u.Email, &u.Name, &u.Role, &u.Phone, &u.Active, &u.PasswordHash, nullTime{&u.LastLoginAt}}
		},
		Filters: map[string]Filter{
			"role":   {Column: "role"},
			"active": {Column: "active", Kind: FilterBool},
		},
		Search:      []string{"name", "email"},
		Sorts:       map[string]string{"name": "name", "email": "email", "role": "role"},
		DefaultSort: "name",
	})}
}

// GetByEmail looks a user up by email, ignoring case.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query, args, err := s.selectAll().Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}
	u, err := s.scan(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrap("get user by email", err)
	}
	return u, nil
}

func (s *UserStore) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := sq.Update(s.Name()).
		Set("last_login_at", timeValue(at)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build login update: %w", err)
	}
	return s.execOne(ctx, "record login", query, args...)
}
