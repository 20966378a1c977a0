package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// subtreeCTE selects the ids of a subcategory and all of its descendants into "tree".
const subtreeCTE = `
	WITH RECURSIVE tree(id) AS (
		SELECT id FROM subcategories WHERE id = ?
		UNION ALL
		SELECT s.id FROM subcategories s JOIN tree t ON s.parent_id = t.id
	)
`

func notFound(kind string, id int64) error {
	return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
}

func invalid(field, format string, args ...any) error {
	return &models.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// checkAffected maps zero affected rows to a not-found error.
func checkAffected(result sql.Result, kind string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound(kind, id)
	}
	return nil
}

func exists(ctx context.Context, q querier, table string, id int64) (bool, error) {
	var found bool
	err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return found, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}
