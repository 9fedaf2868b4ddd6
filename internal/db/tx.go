// Package db holds small helpers shared by the sqlite-backed stores.
package db

import (
	"context"
	"database/sql"
)

// WithTx runs fn inside a transaction bound to ctx. fn's error rolls the
// transaction back; otherwise it is committed.
func WithTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// NullString maps "" to NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullStringValue returns the string value or empty string if not valid.
func NullStringValue(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}
