package store

import (
	"context"
	"database/sql"
	"errors"
)

const termsSchema = `
CREATE TABLE IF NOT EXISTS terms (
    term TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    embedding BLOB NOT NULL
);
`

// EnsureSchema creates the terms table if it does not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, termsSchema)
	return err
}

// checkSchema reports whether db already holds a non-empty terms table.
func checkSchema(ctx context.Context, db *sql.DB) error {
	var tables int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'terms'`).Scan(&tables); err != nil {
		return err
	}
	if tables == 0 {
		return errors.New("no terms table")
	}
	var populated bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM terms)`).Scan(&populated); err != nil {
		return err
	}
	if !populated {
		return errors.New("terms table is empty")
	}
	return nil
}
