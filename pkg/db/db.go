// Package db is the SQLite account store: pending authorization codes,
// refresh token hashes and per-user revocations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const purgeCodes = `DELETE FROM oauth_codes WHERE expires_at <= ?`

// DB is an open, migrated token store.
type DB struct {
	*sql.DB
	path string
}

// Open opens the store at path, brings the schema up to date and drops
// authorization codes that expired while the store was closed. An empty path
// selects voicelink/voicelink.db under the user config directory.
func Open(ctx context.Context, path string) (*DB, error) {
	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	// SQLite has one writer; a single connection avoids SQLITE_BUSY on writes.
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: sqlDB, path: path}
	if err := db.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect to %s: %w", path, err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	if _, err := db.PurgeExpiredCodes(ctx, time.Now()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file in use.
func (db *DB) Path() string {
	return db.path
}

// PurgeExpiredCodes deletes the codes that expired at or before now and
// returns how many were removed.
func (db *DB) PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, purgeCodes, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge expired codes: %w", err)
	}
	return res.RowsAffected()
}

// Tx runs fn in a transaction, committing only when fn succeeds.
func (db *DB) Tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	switch {
	case path == "":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate config directory: %w", err)
		}
		return filepath.Join(dir, "voicelink", "voicelink.db"), nil
	case path == "~" || strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", path, err)
		}
		return filepath.Join(home, path[1:]), nil
	default:
		return path, nil
	}
}
