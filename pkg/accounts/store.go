package accounts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store persists the account-side OAuth state: pending authorization codes,
// refresh tokens and per-user revocations.
type Store interface {
	// SaveCode stores a code for userID that expires after ttl
	SaveCode(ctx context.Context, code, userID string, ttl time.Duration) error
	// ConsumeCode returns the user of a code and deletes it.
	// Unknown or expired codes return ErrInvalidCode.
	ConsumeCode(ctx context.Context, code string) (string, error)

	// SaveRefreshToken stores the hash of a refresh token issued to userID
	SaveRefreshToken(ctx context.Context, hash, userID string) error
	// LookupRefreshToken returns the user of a refresh token hash.
	// Unknown hashes return ErrInvalidToken.
	LookupRefreshToken(ctx context.Context, hash string) (string, error)

	// RevokeUser deletes the user's refresh tokens and records the revocation time
	RevokeUser(ctx context.Context, userID string, at time.Time) error
	// RevokedAt returns the last revocation time of a user
	RevokedAt(ctx context.Context, userID string) (time.Time, bool, error)
}

// HashToken returns the hex SHA-256 of a token, the form refresh tokens are stored in
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
