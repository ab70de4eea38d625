package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vbonduro/fieldtech/internal/domain"
)

// wrap annotates err with the failed operation and translates driver errors
// into domain sentinels.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", op, domain.ErrNotFound)
	}

	switch constraintCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("failed to %s: %w: record already exists", op, domain.ErrConflict)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		if strings.HasPrefix(op, "delete") {
			return fmt.Errorf("failed to %s: %w: record is still referenced", op, domain.ErrConflict)
		}
		return fmt.Errorf("failed to %s: %w: referenced record does not exist", op, domain.ErrInvalidInput)
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrInvalidInput, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func constraintCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch code := sqliteErr.Code(); code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK,
			sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return code
		}
	}
	// Restricted deletes surface as SQLITE_CONSTRAINT_TRIGGER, so fall back
	// to the message.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_UNIQUE
	case strings.Contains(msg, "foreign key constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	case strings.Contains(msg, "check constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_CHECK
	}
	return 0
}
