package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/urmzd/voicelink/pkg/accounts"
)

var _ accounts.Store = (*DB)(nil)

// SaveCode stores an authorization code and drops expired ones.
func (db *DB) SaveCode(ctx context.Context, code, userID string, ttl time.Duration) error {
	now := time.Now()
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, purgeCodes, now.UnixNano()); err != nil {
			return fmt.Errorf("failed to purge codes: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO oauth_codes (code, user_id, expires_at) VALUES (?, ?, ?)
		`, code, userID, now.Add(ttl).UnixNano())
		if err != nil {
			return fmt.Errorf("failed to save code: %w", err)
		}
		return nil
	})
}

// ConsumeCode returns the user of a code and deletes the code.
func (db *DB) ConsumeCode(ctx context.Context, code string) (string, error) {
	var userID string
	err := db.Tx(ctx, func(tx *sql.Tx) error {
		var expiresAt int64
		err := tx.QueryRowContext(ctx, `
			SELECT user_id, expires_at FROM oauth_codes WHERE code = ?
		`, code).Scan(&userID, &expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.ErrInvalidCode
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM oauth_codes WHERE code = ?`, code); err != nil {
			return fmt.Errorf("failed to delete code: %w", err)
		}
		if time.Now().UnixNano() >= expiresAt {
			return accounts.ErrInvalidCode
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// SaveRefreshToken stores a refresh token hash for a user.
func (db *DB) SaveRefreshToken(ctx context.Context, hash, userID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id) VALUES (?, ?)
	`, hash, userID)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// LookupRefreshToken returns the user a refresh token hash was issued to.
func (db *DB) LookupRefreshToken(ctx context.Context, hash string) (string, error) {
	var userID string
	err := db.QueryRowContext(ctx, `
		SELECT user_id FROM refresh_tokens WHERE token_hash = ?
	`, hash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", accounts.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeUser deletes the user's refresh tokens and records the revocation.
func (db *DB) RevokeUser(ctx context.Context, userID string, at time.Time) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to delete refresh tokens: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO revocations (user_id, revoked_at) VALUES (?, ?)
			ON CONFLICT(user_id) DO UPDATE SET revoked_at = excluded.revoked_at
		`, userID, at.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to record revocation: %w", err)
		}
		return nil
	})
}

// RevokedAt returns when the user was last revoked.
func (db *DB) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	var revokedAt int64
	err := db.QueryRowContext(ctx, `
		SELECT revoked_at FROM revocations WHERE user_id = ?
	`, userID).Scan(&revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, revokedAt), true, nil
}
