package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
	"github.com/smuti/greydb-api/internal/usecase"
)

const (
	pqUniqueViolation     pq.ErrorCode = "23505"
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqCheckViolation      pq.ErrorCode = "23514"
)

const dependentSetsTable = "match_dependent_sets"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// classifyErr marks integrity violations so use cases can match them with
// crerr.Is(err, usecase.ErrPersistenceConflict).
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation, pqForeignKeyViolation, pqCheckViolation:
		return crerr.Mark(err, usecase.ErrPersistenceConflict)
	default:
		return err
	}
}

// inTx runs fn inside a transaction, rolling back on any error.
func inTx(ctx context.Context, db *sqlx.DB, name string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", name, err)
	}
	return nil
}

// claimSet records that the 1:N set name of matchID is being written. It
// returns false when another writer already claimed it.
func claimSet(ctx context.Context, tx *sqlx.Tx, matchID int64, name string) (bool, error) {
	query, args, err := qb.InsertInto(dependentSetsTable).
		Columns("match_id", "set_name").
		Values(matchID, name).
		Suffix("ON CONFLICT (match_id, set_name) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build claim %s set query: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classifyErr(fmt.Errorf("claim %s set match_id=%d: %w", name, matchID, err))
	}
	return affected(res)
}

// insertSet claims name for matchID and bulk inserts rows in the same transaction.
func insertSet[T any](ctx context.Context, db *sqlx.DB, table, name string, matchID int64, rows []T) (bool, error) {
	written := false
	err := inTx(ctx, db, "insert "+name, func(tx *sqlx.Tx) error {
		claimed, err := claimSet(ctx, tx, matchID, name)
		if err != nil || !claimed {
			return err
		}
		written = true
		if len(rows) == 0 {
			return nil
		}

		query, args, err := qb.InsertModels(table, rows, "")
		if err != nil {
			return fmt.Errorf("build insert %s query: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return classifyErr(fmt.Errorf("insert %s match_id=%d rows=%d: %w", name, matchID, len(rows), err))
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

// insertOnce inserts a 1:1 row keyed by match_id and reports whether it was new.
func insertOnce(ctx context.Context, db *sqlx.DB, table string, model any) (bool, error) {
	query, args, err := qb.InsertModel(table, model, "ON CONFLICT (match_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert %s query: %w", table, err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classifyErr(fmt.Errorf("insert %s: %w", table, err))
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read rows affected: %w", err)
	}
	return n > 0, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// jsonbParam converts raw JSON to a text parameter; lib/pq sends []byte as bytea.
func jsonbParam(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	value := string(raw)
	return &value
}
