package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vbonduro/gonext/internal/domain"
)

// timestampLayout is ISO 8601 in UTC with millisecond precision, so stored
// createdAt values sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const dateLayout = "2006-01-02"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func storageErr(op string, err error) error {
	return domain.E(domain.KindStorage, op, err)
}

func notFound(op string) error {
	return domain.E(domain.KindNotFound, op, nil)
}

// execAffected runs a built statement and reports whether any row changed.
func execAffected(ctx context.Context, db sqlx.ExecerContext, b sq.Sqlizer, op string) (bool, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return false, storageErr(op, err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storageErr(op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to get rows affected", err)
	}
	return rowsAffected > 0, nil
}

// withTx runs fn in a transaction, committing on success. A failed rollback
// is joined to fn's error.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("failed to begin transaction", err)
	}

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, storageErr("failed to roll back transaction", rerr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("failed to commit transaction", err)
	}
	return nil
}
