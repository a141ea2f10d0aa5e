// Package storage keeps rounds and the multiplayer session on this device.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	position   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session (
	id   INTEGER PRIMARY KEY CHECK (id = 1),
	data TEXT NOT NULL
);
`

// Open opens (creating if needed) the SQLite database at path and makes
// sure the tables exist.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between the saver and readers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping local database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create local tables: %w", err)
	}

	log.Info().Str("path", path).Msg("local database ready")
	return db, nil
}
