package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// CounterStore hands out monotonically increasing sequence values.
type CounterStore struct {
	db *sql.DB
}

func NewCounterStore(db *sql.DB) *CounterStore {
	return &CounterStore{db: db}
}

// Next increments the named counter inside a transaction and returns the new
// value. The first call for a name returns 1.
func (s *CounterStore) Next(ctx context.Context, name string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin counter transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back counter transaction", "counter", name, "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
	`, name); err != nil {
		return 0, wrap("increment counter", err)
	}

	var value int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&value); err != nil {
		return 0, wrap("read counter", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit counter: %w", err)
	}
	return value, nil
}
